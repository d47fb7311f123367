// Package aior is a declarative HTTP and WebSocket layer over net/http.
// Resources group typed operations per path template; request parts are
// bound and validated against Go struct schemas before a handler runs, and
// the same descriptors produce an OpenAPI 3.0 document.
//
// A handler receives a request struct whose fields are parameter markers:
//
//	type UserPath struct {
//	    UserID int `json:"user_id"`
//	}
//
//	type SignUpUser struct {
//	    Username string `json:"username"`
//	    Password string `json:"password"`
//	}
//
//	type GetUserReq struct {
//	    Body aior.Body[SignUpUser]
//	    Path aior.Path[UserPath]
//	}
//
//	func getUser(ctx context.Context, req *GetUserReq) (aior.Response, error) {
//	    return aior.JSON(Item{Name: req.Body.Value.Username}), nil
//	}
//
// Operations are built with Get, Post, Put, Patch and Delete and grouped
// into a Resource, which is mounted at a template with {name} placeholders:
//
//	r := aior.New(aior.WithTitle("Shop"))
//	r.Handle("/users/{user_id}", aior.NewResource("UserInfoHandler",
//	    aior.Get(getUser, aior.Returns[Item]()),
//	))
//	r.ServeSpec("/openapi.json")
//
// Binding failures are answered with 400 and a JSON array of
// {"loc", "msg", "type"} entries; the handler is not called. Handlers pick
// the response shape explicitly with Empty, NoContent, JSON or Raw.
//
// WebSocket endpoints are resources too; see NewWebSocketResource and
// BaseWebSocketHandler.
package aior
