package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	app "github.com/okian/wardwatch/internal/app"
	"github.com/okian/wardwatch/pkg/logger"
)

// run executes the CLI with args and returns stdout and stderr.
func run(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	t.Setenv("WARDWATCH_LOG_LEVEL", "error")

	convey.Convey("Given the wardwatch command", t, func() {
		convey.Convey("When the configuration is invalid", func() {
			_ = os.Setenv("WARDWATCH_STORAGE_DRIVER", "postgres")
			_, _, err := run("cards")
			_ = os.Unsetenv("WARDWATCH_STORAGE_DRIVER")

			convey.Convey("Then the command fails before running", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "storage_driver")
			})
		})

		convey.Convey("When listing the maintenance catalog", func() {
			out, _, err := run("cards")

			convey.Convey("Then a ranked table is printed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "IMPACT")
				convey.So(out, convey.ShouldContainSubstring, "FREQUENCY")
			})
		})

		convey.Convey("When listing the safety catalog as JSON", func() {
			out, _, err := run("cards", "--safety", "--json")
			var cards []map[string]any
			jerr := json.Unmarshal([]byte(out), &cards)

			convey.Convey("Then every card carries an impact", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(jerr, convey.ShouldBeNil)
				convey.So(cards, convey.ShouldNotBeEmpty)
				for _, card := range cards {
					convey.So(card, convey.ShouldContainKey, "impact")
				}
			})
		})

		convey.Convey("When the summary runs on an empty memory store", func() {
			out, _, err := run("summary", "--area", "ssm", "--json")
			var sum app.Summary
			jerr := json.Unmarshal([]byte(out), &sum)

			convey.Convey("Then every counter is zero and the scope is echoed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(jerr, convey.ShouldBeNil)
				convey.So(sum.Scope.Area, convey.ShouldEqual, "ssm")
				convey.So(sum.Tasks, convey.ShouldResemble, app.TaskCounts{})
				convey.So(sum.Today, convey.ShouldNotBeEmpty)
			})
		})

		convey.Convey("When import-training is missing its file flag", func() {
			_, _, err := run("import-training")

			convey.Convey("Then cobra rejects it", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestSQLiteWorkflow(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WARDWATCH_LOG_LEVEL", "error")
	t.Setenv("WARDWATCH_STORAGE_DRIVER", "sqlite")
	t.Setenv("WARDWATCH_STORAGE_PATH", filepath.Join(dir, "wardwatch.db"))

	csvPath := filepath.Join(dir, "attendance.csv")
	csv := "nume;departament;titlu;data\n" +
		"Ana Popescu;ATI;Instruire PSI;2025-03-10\n" +
		"Ion Ionescu;ATI;Instruire PSI;2025-03-10\n" +
		"fara data;ATI;Instruire PSI;\n"
	if err := os.WriteFile(csvPath, []byte(csv), 0o600); err != nil {
		t.Fatal(err)
	}

	convey.Convey("Given a SQLite store shared between commands", t, func() {
		convey.Convey("When a training export is imported", func() {
			out, _, err := run("import-training", "--file", csvPath)

			convey.Convey("Then the report lists accepted and skipped lines", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "accepted: 2, sessions: 1")
				convey.So(out, convey.ShouldContainSubstring, "invalid date")
			})
		})

		convey.Convey("When demo data is seeded", func() {
			out, _, err := run("seed", "--seed", "7", "--tasks", "2")

			convey.Convey("Then the created records are tabulated", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "tasks")
				convey.So(out, convey.ShouldContainSubstring, "TOTAL")
			})

			convey.Convey("And a later summary sees the persisted tasks", func() {
				sumOut, _, sumErr := run("summary", "--json")
				var sum app.Summary
				convey.So(sumErr, convey.ShouldBeNil)
				convey.So(json.Unmarshal([]byte(sumOut), &sum), convey.ShouldBeNil)
				convey.So(sum.Tasks.Open, convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When the summary is printed as a table", func() {
			out, _, err := run("summary")

			convey.Convey("Then the indicators are listed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Open tasks")
				convey.So(out, convey.ShouldContainSubstring, "Training compliance (year)")
			})
		})
	})
}

func TestRouter(t *testing.T) {
	convey.Convey("Given the HTTP router", t, func() {
		svc := app.New()
		router := newRouter(svc, logger.Discard())

		convey.Convey("When probing the health endpoint", func() {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			convey.Convey("Then it answers OK", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			})
		})

		convey.Convey("When fetching the API description", func() {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

			convey.Convey("Then the document is served", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "openapi:")
			})
		})

		convey.Convey("When calling the summary endpoint", func() {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/summary", nil))

			convey.Convey("Then it returns JSON", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(rec.Header().Get("Content-Type"), convey.ShouldContainSubstring, "application/json")
			})
		})
	})
}

func TestUpdateMetrics(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		svc := app.New()
		convey.So(svc.Start(t.Context()), convey.ShouldBeNil)
		defer svc.Stop()

		convey.Convey("Then the periodic updaters run without panicking", func() {
			convey.So(func() { updateSystemMetrics() }, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}
