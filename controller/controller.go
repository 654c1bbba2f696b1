package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"barberbot/platform"
)

var logger = platform.Logger

// currentUserID returns the authenticated user id as the opaque
// string the chat layer is keyed by. TokenValid sets it.
func currentUserID(c *gin.Context) string {
	return strconv.FormatInt(c.GetInt64("UserId"), 10)
}
