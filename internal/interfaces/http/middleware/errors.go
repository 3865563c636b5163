package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// writeMiddlewareError mirrors the handlers' error envelope for responses
// produced before a handler runs.
func writeMiddlewareError(w http.ResponseWriter, err *errors.AppError) {
	var body errorBody
	body.Error.Code = err.Code.String()
	body.Error.Message = err.Message

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(err.Code.HTTPStatus())
	_ = json.NewEncoder(w).Encode(body)
}

//Personal.AI order the ending
