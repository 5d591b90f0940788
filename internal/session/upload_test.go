package session

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/petface/internal/board"
	"github.com/Brownie44l1/petface/internal/classify"
	"github.com/Brownie44l1/petface/internal/inference"
)

func newUpload(t *testing.T, models ModelSource) (*Upload, string) {
	t.Helper()
	dir := t.TempDir()
	return NewUpload("test", models, NewPreviewStore(dir, 0), quietOptions()), dir
}

func TestSelectClassifies(t *testing.T) {
	u, _ := newUpload(t, loaderFor(newFake(dogPreds...)))

	v, err := u.Select(context.Background(), pngReader(t), "face.png")
	require.NoError(t, err)

	assert.Equal(t, "done", v.Status)
	assert.Equal(t, StatusDone.Message(), v.Message)
	assert.Equal(t, classify.Result{Kind: classify.KindDog, Score: 0.92}, v.Result)
	assert.Equal(t, "🐶", v.Headline.Emoji)
	assert.Equal(t, []board.Row{{Label: "강아지", Percent: 92}, {Label: "고양이", Percent: 8}}, v.Rows)
	assert.NotEmpty(t, v.Preview)
}

func TestSelectDecodeErrorKeepsLastResult(t *testing.T) {
	u, _ := newUpload(t, loaderFor(newFake(dogPreds...)))
	_, err := u.Select(context.Background(), pngReader(t), "face.png")
	require.NoError(t, err)

	v, err := u.Select(context.Background(), strings.NewReader("not an image"), "notes.png")
	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, StatusDecodeError, serr.Status)
	assert.Equal(t, "decode_error", v.Status)
	assert.Equal(t, classify.KindDog, v.Result.Kind)
	assert.Equal(t, 92, v.Rows[0].Percent)
}

func TestSelectPredictError(t *testing.T) {
	fake := newFake()
	fake.Set(errors.New("tensor mismatch"))
	var reported []error
	opts := quietOptions()
	opts.OnError = func(err error) { reported = append(reported, err) }
	u := NewUpload("test", loaderFor(fake), NewPreviewStore(t.TempDir(), 0), opts)

	v, err := u.Select(context.Background(), pngReader(t), "face.png")
	require.Error(t, err)
	assert.Equal(t, "predict_error", v.Status)
	assert.Equal(t, classify.Undecided, v.Result)
	require.Len(t, reported, 1)
	assert.ErrorContains(t, reported[0], "tensor mismatch")
}

func TestSelectModelErrorThenRetry(t *testing.T) {
	var attempts atomic.Int32
	fake := newFake(catPreds...)
	loader := inference.NewLoader(func(context.Context) (inference.Predictor, error) {
		if attempts.Add(1) == 1 {
			return nil, errors.New("network down")
		}
		return fake, nil
	}, quietOptions().Logger)
	u, _ := newUpload(t, loader)

	v, err := u.Select(context.Background(), pngReader(t), "face.png")
	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, StatusModelError, serr.Status)
	assert.Equal(t, "model_error", v.Status)
	assert.Empty(t, v.Rows)

	v, err = u.Select(context.Background(), pngReader(t), "face.png")
	require.NoError(t, err)
	assert.Equal(t, classify.KindCat, v.Result.Kind)
}

func TestSelectKeepsOnePreviewLive(t *testing.T) {
	u, dir := newUpload(t, loaderFor(newFake(dogPreds...)))

	var previews []string
	for i := 0; i < 5; i++ {
		v, err := u.Select(context.Background(), pngReader(t), "face.png")
		require.NoError(t, err)
		assert.Equal(t, 1, countFiles(t, dir))
		previews = append(previews, v.Preview)
	}

	for _, id := range previews[:4] {
		_, _, err := u.Preview().Open(id)
		assert.ErrorIs(t, err, ErrNotFound)
	}
	f, _, err := u.Preview().Open(previews[4])
	require.NoError(t, err)
	f.Close()
}

func TestResetSupersedesInFlightSelection(t *testing.T) {
	fake := newFake(dogPreds...)
	release := fake.Hold()
	defer release()
	u, dir := newUpload(t, loaderFor(fake))

	img := pngReader(t)
	errc := make(chan error, 1)
	go func() {
		_, err := u.Select(context.Background(), img, "face.png")
		errc <- err
	}()
	require.Eventually(t, func() bool { return fake.Calls() == 1 }, time.Second, time.Millisecond)

	v, err := u.Reset()
	require.NoError(t, err)
	assert.Equal(t, "ready", v.Status)
	assert.Empty(t, v.Preview)

	release()
	assert.ErrorIs(t, <-errc, ErrStale)

	v = u.View()
	assert.Equal(t, "ready", v.Status)
	assert.Equal(t, classify.Undecided, v.Result)
	assert.Equal(t, 0, countFiles(t, dir))
}

func TestReset(t *testing.T) {
	u, dir := newUpload(t, loaderFor(newFake(dogPreds...)))
	_, err := u.Select(context.Background(), pngReader(t), "face.png")
	require.NoError(t, err)

	v, err := u.Reset()
	require.NoError(t, err)
	assert.Equal(t, "ready", v.Status)
	assert.Equal(t, classify.Undecided, v.Result)
	assert.Equal(t, "믹스 매력형", v.Headline.Title)
	assert.Equal(t, []board.Row{{Label: "강아지"}, {Label: "고양이"}}, v.Rows)
	assert.Empty(t, v.Preview)
	assert.Equal(t, 0, countFiles(t, dir))

	_, err = u.Reset()
	assert.NoError(t, err)
}

func TestPreviewStoreLimit(t *testing.T) {
	dir := t.TempDir()
	p := NewPreviewStore(dir, 4)
	_, err := p.Replace(strings.NewReader("12345"), "big.png")
	assert.Error(t, err)
	assert.Equal(t, 0, countFiles(t, dir))

	h, err := p.Replace(strings.NewReader("1234"), "ok.PNG")
	require.NoError(t, err)
	assert.EqualValues(t, 4, h.Size)
	assert.Equal(t, "ok.PNG", h.Name)
	assert.Equal(t, 1, countFiles(t, dir))
}
