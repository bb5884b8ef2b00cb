package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/smarty/assertions/should"
	"github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/atp-go/pkg/atp"
	"github.com/theapemachine/atp-go/pkg/stores"
)

// taskDirectory serves tasks/get by id, answering task-not-found for
// anything it does not hold.
func taskDirectory(t *testing.T, tasks map[string]*atp.Task) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string              `json:"method"`
			Params atp.TaskQueryParams `json:"params"`
			ID     json.RawMessage     `json:"id"`
		}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		task, ok := tasks[req.Params.TaskID]

		if !ok {
			fmt.Fprintf(w, `{"jsonrpc": "2.0", "id": %s, "error": {"code": -32000, "message": "task not found"}}`, req.ID)
			return
		}

		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  task,
		})
	}))
	t.Cleanup(server.Close)

	return server
}

func TestLoadContext(t *testing.T) {
	convey.Convey("Given a context with two tasks and one broken record", t, func() {
		first := taskIn(atp.TaskStateCompleted, "task-1", "ctx-1")
		first.Status.Timestamp = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		first.History = []atp.Message{
			*atp.NewTextMessage(atp.RoleUser, "plan me a weekend in Porto with good food"),
			*atp.NewTextMessage(atp.RoleAgent, "here is a two day plan"),
		}

		second := taskIn(atp.TaskStateInputReq, "task-2", "ctx-1")
		second.Status.Timestamp = time.Date(2025, 3, 1, 10, 5, 0, 0, time.UTC)
		second.History = []atp.Message{
			*atp.NewTextMessage(atp.RoleUser, "make day two cheaper"),
			*atp.NewTextMessage(atp.RoleAssistant, "how cheap is cheap?"),
		}

		server := taskDirectory(t, map[string]*atp.Task{
			"task-1": first,
			"task-2": second,
		})

		store := stores.NewInMemoryContextStore()
		store.AppendTask("ctx-1", "task-2")
		store.AppendTask("ctx-1", "task-3")
		store.AppendTask("ctx-1", "task-1")

		client := New(server.URL+"/rpc", WithOptions(testOptions()), WithContextStore(store))

		convey.Convey("When loading the conversation", func() {
			conversation, err := client.LoadContext(context.Background(), "ctx-1")

			convey.Convey("Then messages come back oldest first with the broken task skipped", func() {
				convey.So(err, should.BeNil)
				convey.So(conversation.ContextID, should.Equal, "ctx-1")
				convey.So(len(conversation.Messages), should.Equal, 4)

				convey.So(conversation.Messages[0].Role, should.Equal, DisplayRoleUser)
				convey.So(conversation.Messages[0].Text, should.Equal, "plan me a weekend in Porto with good food")
				convey.So(conversation.Messages[0].TaskID, should.BeBlank)

				convey.So(conversation.Messages[1].Role, should.Equal, DisplayRoleAssistant)
				convey.So(conversation.Messages[1].TaskID, should.Equal, "task-1")
				convey.So(conversation.Messages[1].State, should.Equal, atp.TaskStateCompleted)

				convey.So(conversation.Messages[3].Text, should.Equal, "how cheap is cheap?")
				convey.So(conversation.Messages[3].State, should.Equal, atp.TaskStateInputReq)
			})

			convey.Convey("Then the title is the opening user message", func() {
				convey.So(conversation.Title, should.Equal, "plan me a weekend in Porto with good food")
			})

			convey.Convey("Then the registry caches the title for listings", func() {
				records := store.Contexts()
				convey.So(len(records), should.Equal, 1)
				convey.So(records[0].Title, should.Equal, "plan me a weekend in Porto with good food")
			})
		})

		convey.Convey("When loading an unknown context", func() {
			conversation, err := client.LoadContext(context.Background(), "ctx-unknown")

			convey.Convey("Then the conversation is empty but valid", func() {
				convey.So(err, should.BeNil)
				convey.So(conversation.ContextID, should.Equal, "ctx-unknown")
				convey.So(conversation.Messages, should.BeEmpty)
				convey.So(conversation.Title, should.BeBlank)
			})
		})
	})
}

func TestLoadContextTitleTruncation(t *testing.T) {
	convey.Convey("Given a context opened by a long-winded user", t, func() {
		opening := strings.Repeat("all work and no play makes jack a dull boy ", 3)

		task := taskIn(atp.TaskStateCompleted, "task-1", "ctx-1")
		task.History = []atp.Message{*atp.NewTextMessage(atp.RoleUser, opening)}

		server := taskDirectory(t, map[string]*atp.Task{"task-1": task})

		store := stores.NewInMemoryContextStore()
		store.AppendTask("ctx-1", "task-1")

		client := New(server.URL+"/rpc", WithOptions(testOptions()), WithContextStore(store))

		convey.Convey("When loading the conversation", func() {
			conversation, err := client.LoadContext(context.Background(), "ctx-1")

			convey.Convey("Then the title stops at fifty runes", func() {
				convey.So(err, should.BeNil)
				convey.So(len([]rune(conversation.Title)), should.Equal, 50)
				convey.So(strings.HasPrefix(opening, conversation.Title), should.BeTrue)
			})
		})
	})
}

func TestLoadContextWithoutStore(t *testing.T) {
	convey.Convey("Given a client with no context store", t, func() {
		client := New("http://127.0.0.1:1/rpc")

		convey.Convey("When loading any context", func() {
			conversation, err := client.LoadContext(context.Background(), "ctx-1")

			convey.Convey("Then it refuses", func() {
				convey.So(conversation, should.BeNil)
				convey.So(err, should.NotBeNil)
			})
		})
	})
}
