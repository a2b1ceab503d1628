// Package petstore is a small annotated API used by the analyzer tests.
package petstore

import (
	"context"
	"errors"
	"time"

	"github.com/Zachacious/go-routedoc/routedoc"
)

type Pet struct {
	ID   int64     `json:"id"`
	Name string    `json:"name"`
	Tag  *string   `json:"tag,omitempty"`
	Born time.Time `json:"born"`
}

type NewPet struct {
	Name string  `json:"name"`
	Tag  *string `json:"tag,omitempty"`
}

type ListFilter struct {
	Limit   *int   `json:"limit"`
	Species string `json:"species"`
}

var errNotFound = errors.New("pet not found")

// # List pets
//
// Returns the pets in the store,
// optionally filtered by species.
//
//routedoc:get("/pets?<filter>")
//routedoc:openapi(tag = "Pets")
func ListPets(ctx context.Context, filter ListFilter) (routedoc.JSON[[]Pet], error) {
	return routedoc.JSON[[]Pet]{}, nil
}

// # Find a pet
//
//routedoc:get("/pets/<id>?<verbose>")
//routedoc:openapi(tag = "Pets", operation_id = "findPet")
func GetPet(id int64, verbose *bool) (routedoc.Optional[routedoc.JSON[Pet]], error) {
	return routedoc.Optional[routedoc.JSON[Pet]]{}, errNotFound
}

// Adds a pet to the store.
//
//routedoc:post("/pets", format = "json", data = "<pet>")
//routedoc:openapi(tag = "Pets", deprecated)
func CreatePet(pet routedoc.JSON[NewPet]) (routedoc.Created[Pet], error) {
	return routedoc.Created[Pet]{}, nil
}

//routedoc:delete("/pets/<id>")
func DeletePet(id int64) routedoc.NoContent {
	return routedoc.NoContent{}
}

//routedoc:get("/files/<path..>")
//routedoc:openapi(skip)
func ServeFile(path string) routedoc.RawText {
	return ""
}

//routedoc:get("/health")
func Health() string {
	return "ok"
}

// Tokens are rotated daily.
//
//routedoc:get("/internal/stats")
var statsRoute = "not a function"
