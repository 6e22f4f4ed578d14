package output

import (
	"encoding/json"
	"io"
)

// Result is the single object printed on stdout after a run.
type Result struct {
	Success    bool
	Output     []string
	ImageCount *int
	Error      string
}

// Success reports written files.
func Success(files []string) Result {
	if files == nil {
		files = []string{}
	}
	return Result{Success: true, Output: files}
}

// ImageSuccess reports written batch manifests and the number of
// downloaded images.
func ImageSuccess(files []string, count int) Result {
	r := Success(files)
	r.ImageCount = &count
	return r
}

// Failure reports a failed run.
func Failure(err error) Result {
	return Result{Error: err.Error()}
}

type successJSON struct {
	Success    bool     `json:"success"`
	Output     []string `json:"output"`
	ImageCount *int     `json:"image_count,omitempty"`
}

type failureJSON struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// MarshalJSON emits {"success","output"[,"image_count"]} on success and
// {"success","error"} on failure.
func (r Result) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(failureJSON{Error: r.Error})
	}
	out := r.Output
	if out == nil {
		out = []string{}
	}
	return json.Marshal(successJSON{Success: true, Output: out, ImageCount: r.ImageCount})
}

// Print writes r to w as one compact JSON line.
func Print(w io.Writer, r Result) error {
	jw := NewJSONWriter(w, false, "")
	if err := jw.Write(r); err != nil {
		return err
	}
	return jw.Flush()
}
