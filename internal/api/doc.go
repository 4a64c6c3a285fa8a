// Package api 設定 HTTP 路由。
//
// 即時的估算流程都走 /ws 上的 WebSocket；HTTP 只提供版本、健康檢查與房間查詢。
package api
