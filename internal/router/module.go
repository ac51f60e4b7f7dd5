package router

import "github.com/gin-gonic/gin"

// Module is a feature area (users, accounts, debug) that knows how to
// register its own routes on a RouterGroup.
type Module interface {
	Register(rg *gin.RouterGroup)
}
