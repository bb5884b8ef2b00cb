package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smarty/assertions/should"
	"github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/atp-go/pkg/atp"
)

func TestNew(t *testing.T) {
	convey.Convey("Given an RPC endpoint", t, func() {
		convey.Convey("When creating a client with defaults", func() {
			client := New("http://agent.example/rpc")

			convey.Convey("Then it carries the default tuning", func() {
				convey.So(client.rpcURL, should.Equal, "http://agent.example/rpc")
				convey.So(client.opts.PollInterval, should.Equal, time.Second)
				convey.So(client.opts.MaxPollAttempts, should.Equal, 300)
				convey.So(client.Contexts(), should.BeNil)
			})
		})

		convey.Convey("When the tuning is overridden with zero values", func() {
			client := New("http://agent.example/rpc", WithOptions(Options{}))

			convey.Convey("Then the floors kick in", func() {
				convey.So(client.opts.PollInterval, should.Equal, time.Second)
				convey.So(client.opts.MaxPollAttempts, should.Equal, 300)
				convey.So(client.opts.UpdateBuffer, should.Equal, 8)
			})
		})
	})
}

func TestGetTask(t *testing.T) {
	convey.Convey("Given an agent holding a finished task", t, func() {
		agent := &fakeAgent{
			polls: []scriptStep{{task: answeredTask("task-9", "ctx-9", "hi there")}},
		}
		server := agent.serve(t)

		client := New(server.URL+"/rpc", WithOptions(testOptions()))

		convey.Convey("When fetching it", func() {
			task, err := client.GetTask(context.Background(), "task-9")

			convey.Convey("Then the snapshot comes back intact", func() {
				convey.So(err, should.BeNil)
				convey.So(task.ID, should.Equal, "task-9")
				convey.So(task.Status.State, should.Equal, atp.TaskStateCompleted)
				convey.So(atp.ExtractText(task), should.Equal, "hi there")
			})
		})
	})
}

func TestGetTaskNotFound(t *testing.T) {
	convey.Convey("Given an agent that knows no such task", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				ID json.RawMessage `json:"id"`
			}

			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid JSON", http.StatusBadRequest)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"jsonrpc": "2.0", "id": %s, "error": {"code": -32000, "message": "task not found"}}`, req.ID)
		}))
		defer server.Close()

		client := New(server.URL+"/rpc", WithOptions(testOptions()))

		convey.Convey("When fetching a bogus id", func() {
			task, err := client.GetTask(context.Background(), "nope")

			convey.Convey("Then the protocol error carries the agent's code", func() {
				convey.So(task, should.BeNil)

				var protoErr *ProtocolError
				convey.So(errors.As(err, &protoErr), should.BeTrue)
				convey.So(protoErr.Code, should.Equal, -32000)
				convey.So(protoErr.Method, should.Equal, methodTasksGet)
			})
		})
	})
}

func TestSubmitFeedback(t *testing.T) {
	convey.Convey("Given a settled task worth rating", t, func() {
		var received atp.TaskFeedbackParams

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Method string          `json:"method"`
				Params json.RawMessage `json:"params"`
				ID     json.RawMessage `json:"id"`
			}

			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid JSON", http.StatusBadRequest)
				return
			}

			json.Unmarshal(req.Params, &received)

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"jsonrpc": "2.0", "id": %s, "result": {"message": "thanks", "task_id": "task-9"}}`, req.ID)
		}))
		defer server.Close()

		client := New(server.URL+"/rpc", WithOptions(testOptions()))

		convey.Convey("When submitting a rating with a comment", func() {
			result, err := client.SubmitFeedback(context.Background(), "task-9", "spot on", 5)

			convey.Convey("Then the agent records it", func() {
				convey.So(err, should.BeNil)
				convey.So(result.TaskID, should.Equal, "task-9")
				convey.So(result.Message, should.Equal, "thanks")
				convey.So(received.TaskID, should.Equal, "task-9")
				convey.So(received.Rating, should.Equal, 5)
				convey.So(received.Feedback, should.Equal, "spot on")
			})
		})

		convey.Convey("When the rating is out of range", func() {
			result, err := client.SubmitFeedback(context.Background(), "task-9", "meh", 9)

			convey.Convey("Then validation rejects it locally", func() {
				convey.So(result, should.BeNil)
				convey.So(err, should.NotBeNil)
			})
		})

		convey.Convey("When the task id is blank", func() {
			result, err := client.SubmitFeedback(context.Background(), "", "fine", 3)

			convey.Convey("Then validation rejects it locally", func() {
				convey.So(result, should.BeNil)
				convey.So(err, should.NotBeNil)
			})
		})
	})
}
