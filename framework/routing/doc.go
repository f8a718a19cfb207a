// Package routing wraps chi and mounts Controller beans.
//
//	r := container.Resolve[*routing.Router](c, "router")
//	routing.Mount(c, r)
//	http.ListenAndServe(":8080", r)
package routing
