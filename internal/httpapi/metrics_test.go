package httpapi

import (
	"net/http/httptest"
	"testing"
)

func TestItoa(t *testing.T) {
	cases := map[int]string{0: "0", 7: "7", 200: "200", 404: "404", 503: "503"}
	for n, want := range cases {
		if got := itoa(n); got != want {
			t.Errorf("itoa(%d)=%q want %q", n, got, want)
		}
	}
}

func TestRoutePatternOrPathFallsBack(t *testing.T) {
	r := httptest.NewRequest("GET", "/some/raw/path", nil)
	if got := routePatternOrPath(r); got != "/some/raw/path" {
		t.Fatalf("got %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("") != LevelOff || parseLevel("off") != LevelOff {
		t.Fatalf("off mapping broken")
	}
	if parseLevel("debug") != LevelDebug {
		t.Fatalf("debug mapping broken")
	}
	if parseLevel("bogus") != LevelInfo {
		t.Fatalf("unknown levels should default to info")
	}
}

func TestRequestLogLevelOverrides(t *testing.T) {
	r := httptest.NewRequest("GET", "/infer?log=debug", nil)
	if requestLogLevel(r) != LevelDebug {
		t.Fatalf("query override ignored")
	}
	r = httptest.NewRequest("GET", "/infer", nil)
	r.Header.Set("X-Log-Level", "error")
	if requestLogLevel(r) != LevelError {
		t.Fatalf("header override ignored")
	}
}
