// Package auth provides credentials, sessions and the identity gate.
//
// Passwords are stored as bcrypt hashes. A successful login binds the scs
// session to a username; Middleware.Handler re-loads that user on every request
// so a deleted account loses access immediately. Routes opt into protection with
// RequireUser or RequireAdmin, the latter checking the Identity capability
// (entities.User.IsAdmin).
//
// # Configuration
//
//	AUTH_SESSION_LIFETIME=24h      # Session duration
//	AUTH_BCRYPT_COST=12            # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true       # HTTPS-only cookies
//	AUTH_MAX_LOGIN_ATTEMPTS=5      # Failed logins per IP+username before lockout
//	REGISTER_RATE_PER_MINUTE=5     # Registrations per client IP
//
// # Usage
//
//	svc := auth.NewService(db.DB, cfg.Auth)
//	sm, _ := auth.NewSessionManager(db, cfg.Auth)
//	mw := auth.NewMiddleware(svc, sm)
//	router.Use(sm.SessionLoadSave(), mw.Handler())
//	admin := router.Group("/", mw.RequireAdmin())
package auth
