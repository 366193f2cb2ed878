// Package api exposes the allocation pipeline over HTTP.
//
//	GET  /                       service banner
//	GET  /health                 liveness probe
//	POST /api/allocations        run a scenario (JSON or YAML body)
//	GET  /api/allocations        recent runs, newest first
//	GET  /api/allocations/{id}   one stored run
package api
