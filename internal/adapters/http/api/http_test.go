package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/osfanbuff63/pkw-tracking-bot/internal/adapters/http/api"
	service "github.com/osfanbuff63/pkw-tracking-bot/internal/app"
	"github.com/osfanbuff63/pkw-tracking-bot/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	logger.Init()
}

// setupRouter wires the full route table over a real service backed by
// a temp directory.
func setupRouter(t *testing.T, now *time.Time) *mux.Router {
	t.Helper()
	svc := service.New(
		service.WithDataFile(filepath.Join(t.TempDir(), "database.toml")),
		service.WithTimezone("UTC"),
		service.WithClock(func() time.Time { return *now }),
	)
	So(svc.Start(context.Background()), ShouldBeNil)

	r := mux.NewRouter()
	api.NewServer(svc).Register(context.Background(), r)
	return r
}

func doJSON(r *mux.Router, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorCode(rec *httptest.ResponseRecorder) string {
	var resp struct {
		Code string `json:"code"`
	}
	So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
	return resp.Code
}

func TestHealthEndpoint(t *testing.T) {
	Convey("Given the route table", t, func() {
		now := time.Date(2023, time.June, 10, 9, 0, 0, 0, time.UTC)
		r := setupRouter(t, &now)

		Convey("When probing /healthz", func() {
			rec := doJSON(r, http.MethodGet, "/healthz", "")

			Convey("Then the service reports healthy", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"status":"ok"`)
			})

			Convey("And a request id is assigned", func() {
				So(rec.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)
			})
		})

		Convey("When a caller supplies a request id", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set(api.RequestIDHeader, "req-42")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			Convey("Then it is echoed back", func() {
				So(rec.Header().Get(api.RequestIDHeader), ShouldEqual, "req-42")
			})
		})

		Convey("When scraping /metrics", func() {
			rec := doJSON(r, http.MethodGet, "/metrics", "")

			Convey("Then the exposition endpoint responds", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestSubmitEndpoint(t *testing.T) {
	Convey("Given the route table", t, func() {
		now := time.Date(2023, time.June, 10, 9, 0, 0, 0, time.UTC)
		r := setupRouter(t, &now)

		Convey("When submitting a valid time", func() {
			rec := doJSON(r, http.MethodPost, "/api/times",
				`{"user_id":"100","course":3,"time":"1:30","advanced":false}`)

			Convey("Then the submission is accepted with no body", func() {
				So(rec.Code, ShouldEqual, http.StatusNoContent)
			})
		})

		Convey("When submitting a slower time over a faster one", func() {
			So(doJSON(r, http.MethodPost, "/api/times",
				`{"user_id":"100","course":3,"time":"1:30"}`).Code, ShouldEqual, http.StatusNoContent)
			rec := doJSON(r, http.MethodPost, "/api/times",
				`{"user_id":"100","course":3,"time":"1:31"}`)

			Convey("Then the conflict is reported", func() {
				So(rec.Code, ShouldEqual, http.StatusConflict)
				So(errorCode(rec), ShouldEqual, "not_an_improvement")
			})
		})

		Convey("When the body is not JSON", func() {
			rec := doJSON(r, http.MethodPost, "/api/times", "not json")

			Convey("Then it is a bad request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(rec), ShouldEqual, "bad_request")
			})
		})

		Convey("When required fields are missing", func() {
			noUser := doJSON(r, http.MethodPost, "/api/times", `{"course":3,"time":"1:30"}`)
			noTime := doJSON(r, http.MethodPost, "/api/times", `{"user_id":"100","course":3}`)

			Convey("Then both are bad requests", func() {
				So(noUser.Code, ShouldEqual, http.StatusBadRequest)
				So(noTime.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the time text is malformed", func() {
			rec := doJSON(r, http.MethodPost, "/api/times",
				`{"user_id":"100","course":3,"time":"1:99"}`)

			Convey("Then validation fails", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(rec), ShouldEqual, "validation_failed")
			})
		})

		Convey("When the course is outside the fixed set", func() {
			rec := doJSON(r, http.MethodPost, "/api/times",
				`{"user_id":"100","course":8,"time":"1:30"}`)

			Convey("Then validation fails", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(rec), ShouldEqual, "validation_failed")
			})
		})
	})
}

func TestRegisterEndpoint(t *testing.T) {
	Convey("Given the route table", t, func() {
		now := time.Date(2023, time.June, 10, 9, 0, 0, 0, time.UTC)
		r := setupRouter(t, &now)

		Convey("When registering a single user", func() {
			rec := doJSON(r, http.MethodPost, "/api/register", `{"user_id":"100"}`)

			Convey("Then registration succeeds", func() {
				So(rec.Code, ShouldEqual, http.StatusNoContent)
			})
		})

		Convey("When registering a batch", func() {
			rec := doJSON(r, http.MethodPost, "/api/register", `{"user_ids":["100","200"]}`)

			Convey("Then registration succeeds and the list reflects it", func() {
				So(rec.Code, ShouldEqual, http.StatusNoContent)

				list := doJSON(r, http.MethodGet, "/api/registrants", "")
				So(list.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					UserIDs []string `json:"user_ids"`
				}
				So(json.Unmarshal(list.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.UserIDs, ShouldResemble, []string{"100", "200"})
			})
		})

		Convey("When both user_id and user_ids are given", func() {
			rec := doJSON(r, http.MethodPost, "/api/register",
				`{"user_id":"100","user_ids":["200"]}`)

			Convey("Then it is a bad request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(rec), ShouldEqual, "bad_request")
			})
		})

		Convey("When neither is given", func() {
			rec := doJSON(r, http.MethodPost, "/api/register", `{}`)

			Convey("Then it is a bad request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestLeaderboardEndpoint(t *testing.T) {
	Convey("Given standings for a course", t, func() {
		now := time.Date(2023, time.June, 10, 9, 0, 0, 0, time.UTC)
		r := setupRouter(t, &now)

		So(doJSON(r, http.MethodPost, "/api/register",
			`{"user_ids":["alice","bob","carol"]}`).Code, ShouldEqual, http.StatusNoContent)
		So(doJSON(r, http.MethodPost, "/api/times",
			`{"user_id":"alice","course":2,"time":"01:30.00"}`).Code, ShouldEqual, http.StatusNoContent)
		So(doJSON(r, http.MethodPost, "/api/times",
			`{"user_id":"bob","course":2,"time":"01:20.00","advanced":true}`).Code, ShouldEqual, http.StatusNoContent)

		Convey("When fetching the live board", func() {
			rec := doJSON(r, http.MethodGet, "/api/leaderboard/2", "")

			Convey("Then the board covers every registrant in user id order", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					Course         int    `json:"course"`
					Best           string `json:"best"`
					HasSubmissions bool   `json:"has_submissions"`
					Entries        []struct {
						UserID  string `json:"user_id"`
						Time    string `json:"time"`
						Display string `json:"display"`
					} `json:"entries"`
					Top []struct {
						Rank   int    `json:"rank"`
						UserID string `json:"user_id"`
					} `json:"top"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)

				So(resp.Course, ShouldEqual, 2)
				So(resp.Best, ShouldEqual, "01:20.00")
				So(resp.HasSubmissions, ShouldBeTrue)
				So(len(resp.Entries), ShouldEqual, 3)
				So(resp.Entries[0].UserID, ShouldEqual, "alice")
				So(resp.Entries[1].Display, ShouldEqual, "01:20.00 (Advanced Completion)")
				So(resp.Entries[2].Time, ShouldEqual, "99:99.99")

				So(len(resp.Top), ShouldEqual, 2)
				So(resp.Top[0].UserID, ShouldEqual, "bob")
				So(resp.Top[0].Rank, ShouldEqual, 1)
			})
		})

		Convey("When the course segment is not a number", func() {
			rec := doJSON(r, http.MethodGet, "/api/leaderboard/two", "")

			Convey("Then it is a bad request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the course is outside the fixed set", func() {
			rec := doJSON(r, http.MethodGet, "/api/leaderboard/0", "")

			Convey("Then validation fails", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(rec), ShouldEqual, "validation_failed")
			})
		})

		Convey("When a month rolls over", func() {
			now = time.Date(2023, time.July, 2, 8, 0, 0, 0, time.UTC)
			So(doJSON(r, http.MethodPost, "/api/times",
				`{"user_id":"carol","course":2,"time":"01:45.00"}`).Code, ShouldEqual, http.StatusNoContent)

			Convey("And June's archive is fetched", func() {
				rec := doJSON(r, http.MethodGet, "/api/leaderboard/2/2023/6", "")

				Convey("Then the finalized standings come back", func() {
					So(rec.Code, ShouldEqual, http.StatusOK)
					var resp struct {
						Best string `json:"best"`
					}
					So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
					So(resp.Best, ShouldEqual, "01:20.00")
				})
			})
		})

		Convey("When fetching an archive nobody recorded", func() {
			rec := doJSON(r, http.MethodGet, "/api/leaderboard/2/2020/3", "")

			Convey("Then the period is reported missing", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				So(errorCode(rec), ShouldEqual, "archive_not_found")
			})
		})

		Convey("When the month segment is out of range", func() {
			rec := doJSON(r, http.MethodGet, "/api/leaderboard/2/2023/13", "")

			Convey("Then it is a bad request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}
