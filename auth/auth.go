// Package auth handles user accounts and who may do what.
//
// It holds the credential verifier (AuthService: register and authenticate
// against bcrypt hashes), the user repository, the register/login/logout
// handlers, and the guard stages that other packages put in front of their
// routes: RequireAuthenticated and RequireOwnership.
package auth

// Messages shown to visitors through flash or error responses.
const (
	MsgLoginFirst    = "You need to login first!"
	MsgNoPermission  = "You do not have the permission to do that!"
	MsgWelcome       = "Registeration Successful! Welcome to YelpCamp!"
	MsgWelcomeBack   = "Login Successful! Welcome back!"
	MsgLoggedOut     = "Logout successful! Goodbye!"
	MsgBadCredential = "Password or username is incorrect"
)

// Paths the auth flow redirects to.
const (
	LoginPath        = "/login"
	RegisterPath     = "/register"
	DefaultAfterAuth = "/campgrounds"
)
