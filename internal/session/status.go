// Package session holds the controllers behind the upload and live
// classifier screens: what is shown, which resources are live, and which
// inference result is current.
package session

// Status is one of the fixed status-line states.
type Status int

const (
	StatusReady Status = iota
	StatusModelLoading
	StatusImageLoading
	StatusAnalyzing
	StatusDone
	StatusModelError
	StatusDecodeError
	StatusPredictError
	StatusCameraStarting
	StatusLive
	StatusCameraError
	StatusStopped
)

var statusText = [...]struct{ code, message string }{
	StatusReady:          {"ready", "사진을 업로드해 주세요."},
	StatusModelLoading:   {"model_loading", "모델 로딩 중..."},
	StatusImageLoading:   {"image_loading", "이미지 로딩 중..."},
	StatusAnalyzing:      {"analyzing", "분석 중..."},
	StatusDone:           {"done", "완료 · 다른 사진도 업로드할 수 있어요."},
	StatusModelError:     {"model_error", "모델을 불러오지 못했습니다. 새로고침해 주세요."},
	StatusDecodeError:    {"decode_error", "이미지를 불러오지 못했어요. 다른 파일을 선택해 주세요."},
	StatusPredictError:   {"predict_error", "이미지를 처리할 수 없어요. 다른 파일을 선택해 주세요."},
	StatusCameraStarting: {"camera_starting", "카메라 준비 중..."},
	StatusLive:           {"live", "실시간 분석 중..."},
	StatusCameraError:    {"camera_error", "카메라를 사용할 수 없어요. 권한과 연결을 확인해 주세요."},
	StatusStopped:        {"stopped", "카메라가 중지되었어요."},
}

// Code is the stable machine-readable name of s.
func (s Status) Code() string {
	if int(s) < 0 || int(s) >= len(statusText) {
		return "unknown"
	}
	return statusText[s].code
}

// Message is the user-facing status line for s.
func (s Status) Message() string {
	if int(s) < 0 || int(s) >= len(statusText) {
		return ""
	}
	return statusText[s].message
}

func (s Status) String() string { return s.Code() }

// Failed reports whether s is one of the error states.
func (s Status) Failed() bool {
	switch s {
	case StatusModelError, StatusDecodeError, StatusPredictError, StatusCameraError:
		return true
	}
	return false
}
