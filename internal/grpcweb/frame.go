package grpcweb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"google.golang.org/grpc/codes"
)

const (
	flagData    byte = 0x00
	flagTrailer byte = 0x80
	headerLen        = 5

	contentType = "application/grpc-web+proto"
)

var (
	errShortFrame   = errors.New("grpc-web: frame shorter than its header")
	errTrailerFirst = errors.New("grpc-web: request starts with a trailer frame")
	errTooLarge     = errors.New("grpc-web: message too large")
)

// readFrame returns the payload of the leading data frame of body.
func readFrame(body []byte, limit int) ([]byte, error) {
	if len(body) < headerLen {
		return nil, errShortFrame
	}
	if body[0]&flagTrailer != 0 {
		return nil, errTrailerFirst
	}
	size := int(binary.BigEndian.Uint32(body[1:headerLen]))
	if size > limit {
		return nil, errTooLarge
	}
	if len(body)-headerLen < size {
		return nil, fmt.Errorf("%w: want %d bytes, have %d", errShortFrame, size, len(body)-headerLen)
	}
	return body[headerLen : headerLen+size], nil
}

func appendFrame(dst []byte, flag byte, payload []byte) []byte {
	var hdr [headerLen]byte
	hdr[0] = flag
	binary.BigEndian.PutUint32(hdr[1:], uint32(len(payload)))
	return append(append(dst, hdr[:]...), payload...)
}

// trailerBlock renders grpc-status and grpc-message as an HTTP/1 header block.
func trailerBlock(code codes.Code, msg string) []byte {
	b := []byte("grpc-status:" + strconv.Itoa(int(code)) + "\r\n")
	if msg != "" {
		b = append(b, "grpc-message:"+url.PathEscape(msg)+"\r\n"...)
	}
	return b
}

// respond writes the optional message frame followed by the status trailer.
// gRPC-Web always answers 200 and carries the call status in the trailer.
func respond(w http.ResponseWriter, msg []byte, code codes.Code, text string) {
	var out []byte
	if code == codes.OK {
		out = appendFrame(out, flagData, msg)
	}
	out = appendFrame(out, flagTrailer, trailerBlock(code, text))

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(out) //nolint:errcheck
}

// cors sets the browser headers and answers preflight requests itself.
func cors(allowed map[string]bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		origin := r.Header.Get("Origin")
		switch {
		case len(allowed) == 0 && origin != "":
			h.Set("Access-Control-Allow-Origin", origin)
		case len(allowed) == 0:
			h.Set("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Grpc-Web, X-User-Agent")
		h.Set("Access-Control-Expose-Headers", "Grpc-Status, Grpc-Message, Grpc-Status-Details-Bin")
		h.Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
