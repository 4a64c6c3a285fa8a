// Package middleware 提供了 HTTP 請求處理的中間件。
//
// 目前包含以 slog 記錄請求的 Logger，以及驗證 session token 的 AuthMiddleware。
package middleware
