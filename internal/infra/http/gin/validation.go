package ginserver

import (
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the custom binding rules request payloads
// rely on. Call once before building the router.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("timeslot", validTimeOfDay)
	}
}

func validTimeOfDay(fl validator.FieldLevel) bool {
	_, err := time.Parse("15:04", fl.Field().String())
	return err == nil
}

func intQuery(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}

func int64Query(c *gin.Context, key string) int64 {
	val, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil {
		return 0
	}
	return val
}

func floatQuery(c *gin.Context, key string) float64 {
	val, err := strconv.ParseFloat(c.Query(key), 64)
	if err != nil {
		return 0
	}
	return val
}
