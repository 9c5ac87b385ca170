package handlers

import (
	"cerebmod/internal/services"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// errUpstream marks failures of the external AI service.
var errUpstream = errors.New("upstream AI service failed")

// RespondError maps err to a status code and writes {"error": msg}.
func RespondError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		code = http.StatusNotFound
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		code = http.StatusNotFound
		err = errors.New("referenced record does not exist")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		code = http.StatusConflict
		err = errors.New("record already exists")
	case errors.Is(err, services.ErrLLMDisabled):
		code = http.StatusServiceUnavailable
	case errors.Is(err, errUpstream):
		code = http.StatusBadGateway
	}

	if code >= http.StatusInternalServerError {
		slog.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "status", code, "err", err)
	}
	if code == http.StatusInternalServerError {
		err = errors.New("internal server error")
	}
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}

// BadRequest writes a 400 with the given message.
func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// flexID accepts a numeric id sent either as a JSON number or a string.
type flexID uint

func (id *flexID) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("invalid id %s", b)
		}
		n = json.Number(s)
	}
	if n == "" {
		*id = 0
		return nil
	}
	v, err := strconv.ParseUint(n.String(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", n.String())
	}
	*id = flexID(v)
	return nil
}
