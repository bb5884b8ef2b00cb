package payment

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTokenStore(t *testing.T) {
	Convey("Given an empty token store", t, func() {
		store := NewTokenStore()

		Convey("Then it holds nothing and contributes no headers", func() {
			So(store.Has(), ShouldBeFalse)
			So(store.Headers(), ShouldBeEmpty)
		})

		Convey("When a clean token is stored", func() {
			So(store.Set("tok123"), ShouldBeNil)

			Convey("Then it rides along as the payment header", func() {
				So(store.Has(), ShouldBeTrue)
				So(store.Headers(), ShouldResemble, map[string]string{"X-PAYMENT": "tok123"})
			})

			Convey("And clearing drops it again", func() {
				store.Clear()

				So(store.Has(), ShouldBeFalse)
				So(store.Headers(), ShouldBeEmpty)
			})
		})

		Convey("When a non-ASCII token shows up", func() {
			So(store.Set("tok123"), ShouldBeNil)
			err := store.Set("tok→999")

			Convey("Then it is rejected and the store empties itself", func() {
				So(err, ShouldNotBeNil)
				So(store.Has(), ShouldBeFalse)
				So(store.Headers(), ShouldBeEmpty)
			})
		})
	})
}
