package main

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dephin/aior"
)

// Item is a product offered by a shop.
type Item struct {
	Name        string   `json:"name" validate:"min=1"`
	Description *string  `json:"description"`
	Price       float64  `json:"price" validate:"gte=0"`
	Tax         *float64 `json:"tax"`
	Address     Address  `json:"address"`
}

// Address is where an item ships from.
type Address struct {
	Province string `json:"province"`
	City     string `json:"city"`
}

// Shop lists items.
type Shop struct {
	Items []Item `json:"items"`
}

// ItemName is the minimal item payload.
type ItemName struct {
	Name string `json:"name"`
}

// ItemQuery is the search query string.
type ItemQuery struct {
	Q string `json:"q"`
}

// PlainHeaders binds the request content type.
type PlainHeaders struct {
	ContentType string `json:"Content-Type"`
}

// ItemPath is the item_id placeholder.
type ItemPath struct {
	ItemID int `json:"item_id"`
}

// LoginUser holds credentials.
type LoginUser struct {
	Username string `json:"username"`
	Password string `json:"password" validate:"min=8"`
}

// SignUpUser extends LoginUser with an address.
type SignUpUser struct {
	LoginUser
	Address Address `json:"address"`
}

// UserInfo is the public view of a user.
type UserInfo struct {
	UserName string `json:"user_name"`
}

// UserPath is the user_id placeholder.
type UserPath struct {
	UserID int `json:"user_id"`
}

type (
	itemBodyReq struct {
		Item aior.Body[ItemName]
	}
	itemQueryReq struct {
		Item    aior.Body[ItemName]
		Queries aior.Query[ItemQuery]
	}
	itemHeaderReq struct {
		Item    aior.Body[ItemName]
		Queries aior.Query[ItemQuery]
		Headers aior.Header[PlainHeaders]
	}
	itemInfoReq struct {
		Item     aior.Body[ItemName]
		Queries  aior.Query[ItemQuery]
		Headers  aior.Header[PlainHeaders]
		PathArgs aior.Path[ItemPath]
	}
	signUpReq struct {
		Body aior.Body[SignUpUser]
		Path aior.Path[UserPath]
	}
	loginReq struct {
		Body aior.Body[LoginUser]
	}
)

func itemsResource() *aior.Resource {
	return aior.NewResource("ItemsHandler",
		aior.Get(func(_ context.Context, req *itemBodyReq) (aior.Response, error) {
			return aior.JSON(req.Item.Value), nil
		}, aior.Returns[ItemName]()),
		aior.Post(func(_ context.Context, req *itemQueryReq) (aior.Response, error) {
			return aior.JSON(map[string]any{
				"name": req.Item.Value.Name,
				"q":    req.Queries.Value.Q,
			}), nil
		}),
		aior.Put(func(_ context.Context, req *itemHeaderReq) (aior.Response, error) {
			return aior.JSON(map[string]any{
				"name":         req.Item.Value.Name,
				"q":            req.Queries.Value.Q,
				"Content-Type": req.Headers.Value.ContentType,
			}), nil
		}),
	)
}

func itemInfoResource() *aior.Resource {
	return aior.NewResource("ItemInfoHandler",
		aior.Get(func(_ context.Context, req *itemInfoReq) (aior.Response, error) {
			return aior.JSON(map[string]any{
				"name":         req.Item.Value.Name,
				"q":            req.Queries.Value.Q,
				"Content-Type": req.Headers.Value.ContentType,
				"item_id":      req.PathArgs.Value.ItemID,
			}), nil
		}),
	)
}

func userInfoResource() *aior.Resource {
	return aior.NewResource("UserInfoHandler",
		aior.Get(func(_ context.Context, req *signUpReq) (aior.Response, error) {
			return aior.JSON(Item{
				Name:    req.Body.Value.Username,
				Address: req.Body.Value.Address,
			}), nil
		}, aior.Returns[Item]()),
		aior.Post(func(_ context.Context, req *signUpReq) (aior.Response, error) {
			return aior.JSON(Shop{Items: []Item{{
				Name:    req.Body.Value.Username,
				Address: req.Body.Value.Address,
			}}}).WithStatus(http.StatusCreated), nil
		}, aior.Returns[Shop](aior.Created, aior.BadRequest)),
	)
}

func userSessionResource() *aior.Resource {
	login := func(_ context.Context, req *loginReq) (aior.Response, error) {
		if req.Body.Value.Username == "" {
			return aior.Response{}, aior.Error(http.StatusUnauthorized, "unknown user")
		}
		return aior.JSON(UserInfo{UserName: req.Body.Value.Username}), nil
	}
	return aior.NewResource("UserSessionHandler",
		aior.Get(func(context.Context, *aior.Void) (aior.Response, error) {
			return aior.Raw(http.StatusOK, nil), nil
		}),
		aior.Post(func(context.Context, *loginReq) (aior.Response, error) {
			return aior.NoContent(), nil
		}),
		aior.Patch(login, aior.Returns[UserInfo]()),
		aior.Delete(func(context.Context, *loginReq) (aior.Response, error) {
			return aior.Empty(), nil
		}, aior.ReturnsNothing()),
	)
}

// echoHandler answers every JSON text message with the value of its "test"
// field.
type echoHandler struct {
	aior.BaseWebSocketHandler
}

func (echoHandler) OnMessage(_ context.Context, conn *aior.Conn, msg aior.Message) error {
	var payload struct {
		Test string `json:"test"`
	}
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return conn.SendJSON(map[string]string{"error": err.Error()})
	}
	return conn.SendText(payload.Test)
}

func newEchoHandler() aior.WebSocketHandler { return echoHandler{} }

func registerRoutes(r *aior.Router, docs bool) {
	r.Handle("/items", itemsResource())
	r.Handle("/items/{item_id}", itemInfoResource())

	users := r.Group("/users", aior.WithGroupTags("users"))
	users.Handle("/{user_id}", userInfoResource())
	users.Handle("/sessions", userSessionResource())

	r.Handle("/ws/echo", aior.NewWebSocketResource("EchoHandler", newEchoHandler))

	r.ServeSpec("/openapi.json")
	r.ServeSpecYAML("/openapi.yaml")
	if docs {
		r.ServeDocs("/docs")
	}
}
