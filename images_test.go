package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
)

func TestImageArguments_JSON(t *testing.T) {
	encoded, err := json.Marshal(NewImageArguments("a cat").WithN(2).WithSize(ImageSize512).WithResponseFormat(ImageFormatBase64).WithUser("u"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"prompt":"a cat","n":2,"response_format":"b64_json","size":"512x512","user":"u"}`
	if string(encoded) != want {
		t.Errorf("expected %s, got %s", want, encoded)
	}
}

func TestCreateImage(t *testing.T) {
	var path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		fmt.Fprint(w, `{"created":1589478378,"data":[{"url":"https://img/1.png"},{"b64_json":"aGVsbG8="}]}`)
	})

	images, err := client.CreateImage(context.Background(), NewImageArguments("a cat"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/v1/images/generations" {
		t.Errorf("expected /v1/images/generations, got %s", path)
	}
	if len(images) != 2 || images[0] != "https://img/1.png" || images[1] != "aGVsbG8=" {
		t.Errorf("unexpected images %v", images)
	}
}

func TestCreateImage_EmptyObjectFails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"created":1,"data":[{}]}`)
	})

	if _, err := client.CreateImage(context.Background(), NewImageArguments("a cat")); err == nil {
		t.Error("expected error for image object without url or b64_json")
	}
}
