package handler

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/decodeit/internal/service"
)

func TestZodiacListsAllSigns(t *testing.T) {
	env := setupHandlerTest(t)
	w := env.client().do(t, http.MethodGet, "/api/zodiac", nil)
	expectStatus(t, w, http.StatusOK)
	var resp zodiacResponse
	decodeJSON(t, w, &resp)
	if len(resp.Signs) != 12 {
		t.Fatalf("expected 12 signs, got %d", len(resp.Signs))
	}
}

func TestTodayDeedAndSolve(t *testing.T) {
	env := setupHandlerTest(t)
	ada := env.register(t, "ada@example.com", "Ada")

	w := ada.do(t, http.MethodPost, "/api/deed/solve", map[string]string{"answer": "anything"})
	expectError(t, w, http.StatusNotFound, service.ErrChallengeNotStarted.Message)

	w = ada.do(t, http.MethodGet, "/api/deed/today", nil)
	expectStatus(t, w, http.StatusOK)
	var today challengeResponse
	decodeJSON(t, w, &today)
	ch := today.Challenge
	if ch.Sign != "Leo" || ch.Date != "2024-01-01" || ch.Completed || ch.Deed != "" {
		t.Fatalf("unexpected challenge %+v", ch)
	}
	if ch.CipherText == "" || ch.CipherText == env.generator.deed {
		t.Fatalf("expected encoded deed, got %q", ch.CipherText)
	}
	if strings.Contains(w.Body.String(), env.generator.deed) {
		t.Fatal("plain deed leaked before solving")
	}

	w = ada.do(t, http.MethodPost, "/api/deed/solve", map[string]string{"answer": ""})
	expectError(t, w, http.StatusBadRequest, service.ErrAnswerRequired.Message)

	w = ada.do(t, http.MethodPost, "/api/deed/solve", map[string]string{"answer": "Hold the door for a friend."})
	expectStatus(t, w, http.StatusOK)
	var solved solveResponse
	decodeJSON(t, w, &solved)
	if !solved.Success || solved.Correct {
		t.Fatalf("expected incorrect answer, got %+v", solved)
	}

	// 未上传过的图片不能换取上传积分
	for _, image := range []string{"/static/uploads/never-uploaded.png", "https://example.com/door.png"} {
		w = ada.do(t, http.MethodPost, "/api/deed/solve", map[string]string{"answer": env.generator.deed, "image": image})
		expectError(t, w, http.StatusBadRequest, service.ErrImageUnknown.Message)
	}

	w = ada.do(t, http.MethodPost, "/api/deed/solve", map[string]string{"answer": "  hold THE door   for a stranger. "})
	expectStatus(t, w, http.StatusOK)
	decodeJSON(t, w, &solved)
	if !solved.Correct || solved.Deed == nil || solved.Deed.SolvePoints != 6 || solved.Progress.Points != 6 {
		t.Fatalf("unexpected solve result %+v", solved.SolveResult)
	}

	w = ada.do(t, http.MethodPost, "/api/deed/solve", map[string]string{"answer": env.generator.deed})
	expectError(t, w, http.StatusConflict, service.ErrAlreadyCompleted.Message)

	w = ada.do(t, http.MethodGet, "/api/deed/today", nil)
	decodeJSON(t, w, &today)
	if !today.Challenge.Completed || today.Challenge.Deed != env.generator.deed {
		t.Fatalf("expected completed challenge, got %+v", today.Challenge)
	}
}

func TestTodayDeedGeneratorFailure(t *testing.T) {
	env := setupHandlerTest(t)
	env.generator.err = service.ErrDeedUnavailable
	ada := env.register(t, "ada@example.com", "Ada")

	w := ada.do(t, http.MethodGet, "/api/deed/today", nil)
	expectError(t, w, http.StatusServiceUnavailable, service.ErrDeedUnavailable.Message)
}

func encodeTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func uploadRequest(t *testing.T, data []byte, attach bool) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if data != nil {
		part, err := mw.CreateFormFile("image", "deed.png")
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		part.Write(data)
	}
	if attach {
		mw.WriteField("attach", "true")
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/uploads/image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadImage(t *testing.T) {
	env := setupHandlerTest(t)
	ada := env.register(t, "ada@example.com", "Ada")
	data := encodeTestPNG(t, 4, 3)

	w := ada.send(t, uploadRequest(t, data, false))
	expectStatus(t, w, http.StatusOK)
	var resp uploadResponse
	decodeJSON(t, w, &resp)
	if !strings.HasPrefix(resp.URL, "/static/uploads/") || resp.Format != "png" || resp.Width != 4 || resp.Height != 3 {
		t.Fatalf("unexpected upload response %+v", resp)
	}
	if resp.Progress != nil {
		t.Fatal("progress should only be returned when attaching")
	}
	stored, err := os.ReadFile(filepath.Join(env.uploadDir, filepath.Base(resp.URL)))
	if err != nil || !bytes.Equal(stored, data) {
		t.Fatalf("uploaded file not stored: %v", err)
	}

	w = ada.send(t, uploadRequest(t, data, true))
	expectError(t, w, http.StatusNotFound, service.ErrChallengeNotStarted.Message)

	expectStatus(t, ada.do(t, http.MethodGet, "/api/deed/today", nil), http.StatusOK)
	expectStatus(t, ada.do(t, http.MethodPost, "/api/deed/solve", map[string]string{"answer": env.generator.deed}), http.StatusOK)

	w = ada.send(t, uploadRequest(t, data, true))
	expectStatus(t, w, http.StatusOK)
	decodeJSON(t, w, &resp)
	if resp.Progress == nil || resp.Progress.Points != 12 || resp.Progress.PastDeeds[0].Image != resp.URL {
		t.Fatalf("expected upload bonus on today's deed, got %+v", resp.Progress)
	}

	w = ada.send(t, uploadRequest(t, nil, false))
	expectError(t, w, http.StatusBadRequest, service.ErrImageRequired.Message)

	w = ada.send(t, uploadRequest(t, []byte("definitely not an image"), false))
	expectError(t, w, http.StatusBadRequest, service.ErrImageInvalid.Message)

	w = ada.send(t, uploadRequest(t, bytes.Repeat([]byte{0}, service.MaxImageBytes+2<<20), false))
	expectError(t, w, http.StatusBadRequest, service.ErrImageTooLarge.Message)
}
