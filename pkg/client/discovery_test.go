package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smarty/assertions/should"
	"github.com/smartystreets/goconvey/convey"
)

func TestDiscover(t *testing.T) {
	convey.Convey("Given an agent publishing its card", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/.well-known/agent.json" {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"name": "Travel Planner", "version": "2.1.0", "url": "http://agent.example/rpc"}`)
		}))
		defer server.Close()

		client := New(server.URL+"/rpc", WithOptions(testOptions()))

		convey.Convey("When discovering it", func() {
			card, err := client.Discover(context.Background())

			convey.Convey("Then the card comes back", func() {
				convey.So(err, should.BeNil)
				convey.So(card.Name, should.Equal, "Travel Planner")
				convey.So(card.Version, should.Equal, "2.1.0")
			})
		})
	})
}

func TestDiscoverNoCard(t *testing.T) {
	convey.Convey("Given an agent without a published card", t, func() {
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		client := New(server.URL+"/rpc", WithOptions(testOptions()))

		convey.Convey("When discovery gives up after its retries", func() {
			card, err := client.Discover(context.Background())

			convey.Convey("Then the failure is a network error", func() {
				convey.So(card, should.BeNil)

				var netErr *NetworkError
				convey.So(errors.As(err, &netErr), should.BeTrue)
			})
		})
	})
}
