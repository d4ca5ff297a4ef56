package identity

import (
	"errors"
	"net/http"

	dmn "github.com/beka-birhanu/vinom-search/domain"
	"github.com/beka-birhanu/vinom-search/service/i"
	"github.com/gin-gonic/gin"
)

// IdentityServer handles HTTP requests related to authentication.
type IdentityServer struct {
	authService i.Authenticator
}

// NewIdentityServer creates a new IdentityServer.
func NewIdentityServer(a i.Authenticator) *IdentityServer {
	return &IdentityServer{
		authService: a,
	}
}

// RegisterPublic registers public routes.
func (c *IdentityServer) RegisterPublic(route *gin.RouterGroup) {
	auth := route.Group("/auth")
	{
		auth.POST("/login", c.login)
	}
}

// RegisterProtected registers privileged routes. Only signed-in operators
// can add other operators.
func (c *IdentityServer) RegisterProtected(route *gin.RouterGroup) {
	route.POST("/auth/register", c.registerOperator)
}

// registerOperator handles operator registration.
func (c *IdentityServer) registerOperator(ctx *gin.Context) {
	var request AuthRequest

	if err := ctx.ShouldBind(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := c.authService.Register(ctx.Request.Context(), request.Name, request.Key)
	switch {
	case errors.Is(err, dmn.ErrOperatorConflict):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response := gin.H{"message": "Operator registered successfully"}
	ctx.JSON(http.StatusCreated, response)
}

// login handles operator sign in.
func (c *IdentityServer) login(ctx *gin.Context) {
	var request AuthRequest

	if err := ctx.ShouldBind(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := c.authService.SignIn(ctx.Request.Context(), request.Name, request.Key)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	response := &AuthResponse{
		Operator: request.Name,
		Token:    token,
	}
	ctx.JSON(http.StatusOK, response)
}
