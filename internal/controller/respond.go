package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quizforge/quizforge/internal/apperr"
	"github.com/quizforge/quizforge/internal/dto"
	"github.com/quizforge/quizforge/internal/middleware"
	"github.com/quizforge/quizforge/internal/model"
	"github.com/rs/zerolog/log"
)

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, dto.OK(data))
}

// respondErr maps an application error onto its HTTP status. Unclassified
// errors are logged and hidden behind a generic 500.
func respondErr(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		c.JSON(status, dto.Err("internal server error"))
		return
	}
	c.JSON(status, dto.Err(err.Error()))
}

func bindErr(c *gin.Context, err error) {
	log.Warn().Err(err).Str("path", c.FullPath()).Msg("Failed to bind request body")
	c.JSON(http.StatusBadRequest, dto.Err(err.Error()))
}

func mustIdentity(c *gin.Context) (model.Identity, bool) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Err("authentication required"))
	}
	return ident, ok
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Err("invalid "+name+" format"))
		return 0, false
	}
	return uint(id), true
}
