package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应信封
type Response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

const codeOK = 0

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Code: codeOK, Msg: "ok", Data: data})
}

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Response{Code: status, Msg: msg})
}
