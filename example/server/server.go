package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/RobertWHurst/boreas"
)

type chatController struct {
	boreas.ControllerBase
	sender string
}

func (c *chatController) Before() error {
	// Resolve the sender once per invocation. Identity is lazy and cached,
	// so unauthenticated routes never pay for validation.
	identity, err := c.Ctx().Identity()
	if err != nil {
		c.sender = "anonymous"
		return nil
	}
	c.sender = identity.Subject
	return nil
}

func main() {
	dispatcher := boreas.NewDispatcher(&boreas.Config{
		PatternRouting:     true,
		QueryStringMapping: true,
		ValidateToken: func(ctx context.Context, token string) (*boreas.Identity, error) {
			// Stand-in for a real validator.
			return &boreas.Identity{Subject: token}, nil
		},
	})

	sendHandler, err := boreas.NewHandler(
		func() boreas.Controller { return &chatController{} },
		func(controller boreas.Controller, args []any) (any, error) {
			chat := controller.(*chatController)

			var body struct {
				Text string `json:"text"`
			}
			if err := json.Unmarshal(args[0].(json.RawMessage), &body); err != nil {
				return nil, err
			}

			fmt.Printf("%s: %s\n", chat.sender, body.Text)
			return map[string]any{"status": "sent"}, nil
		},
		boreas.Param("body", boreas.BodyParam),
	)
	if err != nil {
		panic(err)
	}
	if err := dispatcher.AddRoute(boreas.SocketMethod, "/chat/send", sendHandler); err != nil {
		panic(err)
	}

	userHandler, err := boreas.NewFuncHandler(
		func(ctx *boreas.Context, args []any) (any, error) {
			return map[string]any{"id": args[0], "page": args[1]}, nil
		},
		boreas.Param("id", boreas.UUIDParam),
		boreas.ParamWithDefault("page", boreas.IntParam, 1),
	)
	if err != nil {
		panic(err)
	}
	if err := dispatcher.AddRoute("GET", "/users/{id}", userHandler); err != nil {
		panic(err)
	}

	fmt.Println("Starting server on port 8167")
	if err := http.ListenAndServe(":8167", dispatcher); err != nil {
		fmt.Println("Error starting server:", err)
	}
}
