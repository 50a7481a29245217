package router // route registration for the reservation API

import (
    "github.com/labstack/echo/v4"

    "github.com/hotelbrasileiro/hotel-reservation/internal/handler"
    "github.com/hotelbrasileiro/hotel-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    // Used by load balancers and monitoring to verify the service is up.
    e.GET("/healthz", handler.Health)
}

// RegisterCheckout registers the payment routes under /checkout.  None of
// them require a JWT: the mobile app creates reservations before the guest
// has an account, and PagBank posts notifications without credentials.  The
// rate limiter shields the PagBank calls from abuse; pass a nil limiter to
// skip it.
func RegisterCheckout(e *echo.Echo, h *handler.CheckoutHandler, limiter echo.MiddlewareFunc) {
    g := e.Group("/checkout")
    if limiter != nil {
        g.Use(limiter)
    }
    // Checkout-only: create a PagBank hosted checkout for an existing or
    // external reference.
    g.POST("/create-checkout", h.CreateCheckout)
    // Combined flow: persist the reservation, then open its checkout.
    g.POST("/reservas/criar-e-pagar", h.CreateReservationAndPay)
    // Poll the stored payment status of a reservation.
    g.GET("/status/:referenceId", h.GetStatus)
    // PagBank webhook receiver, registered OUTSIDE the limited group: the
    // provider must always get its 200, a 429 would start a retry storm.
    e.POST("/checkout/notifications", h.HandleNotification)
}

// RegisterAuth registers the guest-account routes and their middleware.
// Unauthenticated operations live under /v1/auth; endpoints that need a
// session live under /v1 behind the JWT middleware.  The limiter covers the
// credential endpoints (login brute force, recovery-email floods); nil skips
// it.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
    g := e.Group("/v1/auth")
    if limiter != nil {
        g.Use(limiter)
    }
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    // Rotates the refresh token.
    g.POST("/refresh", a.Refresh)
    // Logout takes the refresh token in the body, no JWT required.
    g.POST("/logout", a.Logout)
    // Password recovery: request a code by email, then redeem it.
    g.POST("/forgot-password", a.ForgotPassword)
    g.POST("/reset-password", a.ResetPassword)

    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(jwtSecret))
    auth.GET("/me", a.Me)
    // The guest's own reservations, newest first.
    auth.GET("/me/reservas", a.MyReservations)
}

// RegisterPublic registers the unauthenticated room catalogue.  The cache
// middleware is optional; pass nil to serve straight from MySQL.
func RegisterPublic(e *echo.Echo, r *handler.RoomHandler, cache echo.MiddlewareFunc) {
    g := e.Group("/v1/quartos")
    if cache != nil {
        g.Use(cache)
    }
    g.GET("", r.GetRooms)
    g.GET("/:id", r.GetRoom)
}
