// Package http provides request and JSON response helpers for controllers.
//
//	req := gohttp.NewRequest(r)
//	name := req.RouteParam("name")
//	page := req.Query("page", "1")
//
//	res := gohttp.NewResponse(w)
//	res.Success(data)             // 200 {"data": ...}
//	res.Error(400, "bad input")   // {"message": "bad input"}
//	res.NotFound()                // 404 {"message": "Not found."}
//	res.ValidationError(errs)     // 422 {"errors": {"field": ["msg"]}}
//	res.Fail(err)                 // status picked from the error kind
package http
