package atp

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNewID(t *testing.T) {
	Convey("Given the id generator", t, func() {
		Convey("When a new id is created", func() {
			id := NewID()

			Convey("Then it is 32 lowercase hex characters without dashes", func() {
				So(id, ShouldHaveLength, 32)
				So(id, ShouldNotContainSubstring, "-")
				So(strings.ToLower(id), ShouldEqual, id)
			})
		})

		Convey("When two ids are created", func() {
			Convey("Then they differ", func() {
				So(NewID(), ShouldNotEqual, NewID())
			})
		})
	})
}

func TestNormalizeContextID(t *testing.T) {
	Convey("Given a context id in need of normalisation", t, func() {
		Convey("When the id is empty", func() {
			normalized := NormalizeContextID("")

			Convey("Then a fresh canonical id is generated", func() {
				So(normalized, ShouldHaveLength, 32)
			})
		})

		Convey("When the id uses the 24-character legacy form", func() {
			legacy := strings.Repeat("ab", 12)
			normalized := NormalizeContextID(legacy)

			Convey("Then it is right-padded with zeroes to 32 characters", func() {
				So(normalized, ShouldHaveLength, 32)
				So(normalized, ShouldEqual, legacy+"00000000")
			})
		})

		Convey("When the id is already canonical", func() {
			canonical := strings.Repeat("cd", 16)

			Convey("Then it passes through untouched", func() {
				So(NormalizeContextID(canonical), ShouldEqual, canonical)
			})
		})

		Convey("When the id has some other shape entirely", func() {
			Convey("Then it also passes through untouched", func() {
				So(NormalizeContextID("ctx-7"), ShouldEqual, "ctx-7")
			})
		})
	})
}

func TestResolveTaskIdentity(t *testing.T) {
	Convey("Given an outgoing message in need of a task identity", t, func() {
		Convey("When the message replies to a specific task", func() {
			taskID, refs := ResolveTaskIdentity("task-1", "", TaskStateUnknown)

			Convey("Then a new task is forked referencing the replied-to task", func() {
				So(taskID, ShouldHaveLength, 32)
				So(taskID, ShouldNotEqual, "task-1")
				So(refs, ShouldResemble, []string{"task-1"})
			})
		})

		Convey("When the message replies to a task while the current task awaits input", func() {
			taskID, refs := ResolveTaskIdentity("task-1", "task-2", TaskStateInputReq)

			Convey("Then the reply wins and forks off the replied-to task", func() {
				So(taskID, ShouldNotEqual, "task-2")
				So(refs, ShouldResemble, []string{"task-1"})
			})
		})

		Convey("When the current task is paused on input-required", func() {
			taskID, refs := ResolveTaskIdentity("", "task-2", TaskStateInputReq)

			Convey("Then the same task continues with no references", func() {
				So(taskID, ShouldEqual, "task-2")
				So(refs, ShouldBeEmpty)
			})
		})

		Convey("When the current task is paused on auth-required", func() {
			taskID, refs := ResolveTaskIdentity("", "task-2", TaskStateAuthReq)

			Convey("Then the same task continues with no references", func() {
				So(taskID, ShouldEqual, "task-2")
				So(refs, ShouldBeEmpty)
			})
		})

		Convey("When the current task already finished", func() {
			taskID, refs := ResolveTaskIdentity("", "task-2", TaskStateCompleted)

			Convey("Then a new task starts referencing the finished one", func() {
				So(taskID, ShouldNotEqual, "task-2")
				So(taskID, ShouldHaveLength, 32)
				So(refs, ShouldResemble, []string{"task-2"})
			})
		})

		Convey("When there is no current task at all", func() {
			taskID, refs := ResolveTaskIdentity("", "", TaskStateUnknown)

			Convey("Then a brand new unreferenced task starts", func() {
				So(taskID, ShouldHaveLength, 32)
				So(refs, ShouldBeEmpty)
			})
		})
	})
}
