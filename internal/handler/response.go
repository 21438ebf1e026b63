package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/fault"
)

const (
	msgOK           = "request completed successfully"
	msgInvalid      = "request validation failed"
	msgInternal     = "internal server error"
	timestampLayout = time.RFC3339
)

// respond writes the success envelope. A nil data omits the data field.
func (h *Handler) respond(w http.ResponseWriter, status int, message string, data func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.ObjStart()
	e.FieldStart("success")
	e.Bool(true)
	if data != nil {
		e.FieldStart("data")
		data(e)
	}
	if message != "" {
		e.FieldStart("message")
		e.Str(message)
	}
	e.FieldStart("timestamp")
	e.Str(h.now().Format(timestampLayout))
	e.ObjEnd()

	writeJSON(w, status, e)
}

// ok writes a 200 envelope with the default message.
func (h *Handler) ok(w http.ResponseWriter, data func(e *jx.Encoder)) {
	h.respond(w, http.StatusOK, msgOK, data)
}

// fail translates err into an error body. Errors without a domain kind are
// logged and reported with a generic message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := fault.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case fault.KindNotFound:
		status = http.StatusNotFound
	case fault.KindRule:
		status = http.StatusUnprocessableEntity
	case fault.KindConflict:
		status = http.StatusConflict
	case fault.KindValidation:
		status = http.StatusBadRequest
	}

	message := msgInternal
	var fields []fault.FieldError
	if kind == fault.KindInternal {
		zctx.From(r.Context()).Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	} else {
		var k fault.Kinded
		if errors.As(err, &k) {
			message = k.Error()
		}
		var v *fault.ValidationError
		if errors.As(err, &v) {
			fields = v.Fields
			message = v.Message
			if message == "" {
				message = msgInvalid
			}
		}
	}

	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.ObjStart()
	e.FieldStart("timestamp")
	e.Str(h.now().Format(timestampLayout))
	e.FieldStart("status")
	e.Int(status)
	e.FieldStart("error")
	e.Str(http.StatusText(status))
	e.FieldStart("message")
	e.Str(message)
	e.FieldStart("path")
	e.Str(r.URL.Path)
	if len(fields) > 0 {
		e.FieldStart("details")
		e.ObjStart()
		for _, f := range fields {
			e.FieldStart(f.Field)
			e.Str(f.Message)
		}
		e.ObjEnd()

		e.FieldStart("validationErrors")
		e.ArrStart()
		for _, f := range fields {
			e.ObjStart()
			e.FieldStart("field")
			e.Str(f.Field)
			e.FieldStart("message")
			e.Str(f.Message)
			e.FieldStart("rejectedValue")
			encodeAny(e, f.Rejected)
			e.ObjEnd()
		}
		e.ArrEnd()
	}
	e.ObjEnd()

	writeJSON(w, status, e)
}

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status is already written; a failed write means the client left.
	_, _ = w.Write(e.Bytes())
}

// encodeAny writes the rejected value of a field error.
func encodeAny(e *jx.Encoder, v any) {
	switch v := v.(type) {
	case nil:
		e.Null()
	case string:
		e.Str(v)
	case int:
		e.Int(v)
	case int64:
		e.Int64(v)
	case bool:
		e.Bool(v)
	case interface{ String() string }:
		e.Str(v.String())
	default:
		e.Null()
	}
}
