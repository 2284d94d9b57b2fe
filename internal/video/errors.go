package video

import "fmt"

// Pipeline stages reported by EncodingError.
const (
	StageRender = "render"
	StageEncode = "encode"
	StageConcat = "concat"
)

// EncodingError is any failure while turning frames into the output file.
// Scene is -1 when the failure is not tied to one scene.
type EncodingError struct {
	Stage string
	Scene int
	Err   error
}

func (e *EncodingError) Error() string {
	if e.Scene >= 0 {
		return fmt.Sprintf("%s scene %d: %v", e.Stage, e.Scene+1, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}
