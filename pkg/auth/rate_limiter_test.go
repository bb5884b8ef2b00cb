package auth

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNewRateLimiter(t *testing.T) {
	Convey("When creating a rate limiter", t, func() {
		rl := NewRateLimiter(2, time.Second)
		Convey("Then it initializes correctly", func() {
			So(rl, ShouldNotBeNil)
			So(rl.WaitTime(), ShouldEqual, 0)
		})
	})
}

func TestRateLimiterAllow(t *testing.T) {
	Convey("Given a limiter with capacity 2", t, func() {
		rl := NewRateLimiter(2, time.Second)
		ok1 := rl.Allow()
		ok2 := rl.Allow()
		ok3 := rl.Allow()
		Convey("Then the third call should be limited", func() {
			So(ok1, ShouldBeTrue)
			So(ok2, ShouldBeTrue)
			So(ok3, ShouldBeFalse)
		})
		Convey("And the limiter knows how long until the next slot", func() {
			So(rl.WaitTime(), ShouldBeGreaterThan, 0)
		})
		time.Sleep(time.Second)
		Convey("And after waiting it allows again", func() {
			So(rl.Allow(), ShouldBeTrue)
		})
	})
}

func TestRateLimiterReset(t *testing.T) {
	Convey("Given a drained limiter", t, func() {
		rl := NewRateLimiter(1, time.Minute)
		So(rl.Allow(), ShouldBeTrue)
		So(rl.Allow(), ShouldBeFalse)

		rl.Reset()

		Convey("Then a reset refills the bucket", func() {
			So(rl.Allow(), ShouldBeTrue)
		})
	})
}
