package middleware

import "net/http"

// recorder remembers the first status written and counts body bytes.
// It implements Unwrap so http.ResponseController reaches the underlying
// writer, and Flush so SSE handlers behind it can stream.
type recorder struct {
	http.ResponseWriter
	code    int
	written int
}

func record(w http.ResponseWriter) *recorder {
	return &recorder{ResponseWriter: w}
}

// Status reports 200 when the handler wrote a body without a header.
func (rec *recorder) Status() int {
	if rec.code == 0 {
		return http.StatusOK
	}
	return rec.code
}

func (rec *recorder) WriteHeader(code int) {
	if rec.code == 0 {
		rec.code = code
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *recorder) Write(p []byte) (int, error) {
	if rec.code == 0 {
		rec.code = http.StatusOK
	}
	n, err := rec.ResponseWriter.Write(p)
	rec.written += n
	return n, err
}

func (rec *recorder) Flush() { _ = http.NewResponseController(rec.ResponseWriter).Flush() }

func (rec *recorder) Unwrap() http.ResponseWriter { return rec.ResponseWriter }
