package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sessionvault/internal/model"
	"sessionvault/internal/service"
	serviceMocks "sessionvault/internal/service/mocks"
	"sessionvault/internal/storage"
	storeMocks "sessionvault/internal/storage/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	t.Run("all dependencies up", func(t *testing.T) {
		store := new(storeMocks.MockStorage)
		store.On("Ping", mock.Anything).Return(nil).Once()
		dbMock.ExpectPing()

		app := fiber.New()
		app.Get("/api/health", HealthCheck(db, store))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		decode(t, resp, &body)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "mock", body["storage_backend"])
		assert.Equal(t, true, body["mock_connected"])
		assert.Equal(t, true, body["database_connected"])
		assert.NotEmpty(t, body["timestamp"])
	})

	t.Run("unconfigured backend still healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		app := fiber.New()
		app.Get("/api/health", HealthCheck(db, storage.NewUnavailable("minio", errors.New("missing credentials"))))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		decode(t, resp, &body)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "minio", body["storage_backend"])
		assert.Equal(t, false, body["minio_connected"])
		assert.Equal(t, false, body["database_connected"])
	})

	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUploadSession(t *testing.T) {
	mockSvc := new(serviceMocks.MockSessionService)
	app := fiber.New()
	app.Post("/api/sessions/upload", UploadSession(mockSvc))

	t.Run("success", func(t *testing.T) {
		content := []byte(`{"creds":"abc12"}`)
		body, ct := multipartBody(t, "file", "creds.json", content)

		mockSvc.On("Upload", mock.Anything, "creds.json", content).
			Return(&model.SessionFile{Filename: "creds.json", StorageKey: "k1.json", FileSize: 17, StorageLink: "http://link"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/sessions/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var res uploadResponse
		decode(t, resp, &res)
		assert.True(t, res.Success)
		assert.Equal(t, "k1.json", res.FileID)
		assert.Equal(t, "creds.json", res.Filename)
		assert.Equal(t, "http://link", res.PublicLink)
		assert.Equal(t, "Session file uploaded successfully", res.Message)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/api/sessions/upload", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var res errorPayload
		decode(t, resp, &res)
		assert.Equal(t, "FILE_REQUIRED", res.Code)
	})

	t.Run("wrong field name", func(t *testing.T) {
		body, ct := multipartBody(t, "upload", "creds.json", []byte("x"))
		req := httptest.NewRequest(http.MethodPost, "/api/sessions/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("storage unavailable", func(t *testing.T) {
		body, ct := multipartBody(t, "file", "creds.json", []byte("x"))
		mockSvc.On("Upload", mock.Anything, "creds.json", []byte("x")).
			Return(nil, &service.Error{Op: "upload", Kind: service.KindUnavailable, Err: storage.ErrUnavailable}).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/sessions/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("upload failure", func(t *testing.T) {
		body, ct := multipartBody(t, "file", "creds.json", []byte("x"))
		mockSvc.On("Upload", mock.Anything, "creds.json", []byte("x")).
			Return(nil, &service.Error{Op: "upload", Kind: service.KindUpload, Err: errors.New("db save failed: boom")}).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/sessions/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		var res errorPayload
		decode(t, resp, &res)
		assert.Equal(t, "Upload failed: upload: db save failed: boom", res.Detail)
	})
}

func TestListSessions(t *testing.T) {
	mockSvc := new(serviceMocks.MockSessionService)
	app := fiber.New()
	app.Get("/api/sessions", ListSessions(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("List", mock.Anything).Return([]model.SessionFile{
			{Filename: "a.json", StorageKey: "k1"},
			{Filename: "b.json", StorageKey: "k2"},
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var res listResponse
		decode(t, resp, &res)
		assert.True(t, res.Success)
		assert.Equal(t, 2, res.Count)
		assert.Equal(t, "k1", res.Sessions[0].StorageKey)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		mockSvc.On("List", mock.Anything).Return(nil, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
		raw, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(raw), `"sessions":[]`)
		assert.Contains(t, string(raw), `"count":0`)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything).Return(nil, errors.New("db down")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestDownloadSession(t *testing.T) {
	mockSvc := new(serviceMocks.MockSessionService)
	app := fiber.New()
	app.Get("/api/sessions/download/:file_id", DownloadSession(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Download", mock.Anything, "k1.json").Return(&service.DownloadResult{
			File:      model.SessionFile{Filename: "creds.json", StorageKey: "k1.json"},
			LocalPath: "downloads/creds.json",
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/sessions/download/k1.json", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var res downloadResponse
		decode(t, resp, &res)
		assert.True(t, res.Success)
		assert.Equal(t, "downloads/creds.json", res.LocalPath)
		assert.Equal(t, "creds.json", res.Filename)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Download", mock.Anything, "missing").
			Return(nil, &service.Error{Op: "download", Kind: service.KindNotFound, Err: service.ErrSessionNotFound}).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/sessions/download/missing", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var res errorPayload
		decode(t, resp, &res)
		assert.Equal(t, "NOT_FOUND", res.Code)
		assert.Equal(t, "Session file not found", res.Detail)
	})

	t.Run("inconsistent", func(t *testing.T) {
		mockSvc.On("Download", mock.Anything, "orphan").
			Return(nil, &service.Error{Op: "download", Kind: service.KindInconsistent, Err: storage.ErrBlobNotFound}).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/sessions/download/orphan", nil))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		var res errorPayload
		decode(t, resp, &res)
		assert.True(t, strings.HasPrefix(res.Detail, "Download failed: "))
	})
}

func TestDeleteSession(t *testing.T) {
	mockSvc := new(serviceMocks.MockSessionService)
	app := fiber.New()
	app.Delete("/api/sessions/:file_id", DeleteSession(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "k1").Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/api/sessions/k1", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var res messageResponse
		decode(t, resp, &res)
		assert.True(t, res.Success)
		assert.Equal(t, "Session file deleted successfully", res.Message)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "k1").
			Return(&service.Error{Op: "delete", Kind: service.KindNotFound}).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/api/sessions/k1", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestBotStatus(t *testing.T) {
	mockSvc := new(serviceMocks.MockStatusService)
	app := fiber.New()
	app.Get("/api/bot/status", GetBotStatus(mockSvc))
	app.Post("/api/bot/status", SetBotStatus(mockSvc))

	t.Run("get default", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything).Return(&model.BotStatus{ID: model.BotStatusID, LastSeen: time.Now().UTC()}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/bot/status", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		decode(t, resp, &body)
		assert.Equal(t, false, body["is_connected"])
		assert.Nil(t, body["qr_code"])
		assert.Nil(t, body["phone_number"])
		assert.Equal(t, false, body["session_restored"])
	})

	t.Run("set", func(t *testing.T) {
		mockSvc.On("Set", mock.Anything, mock.MatchedBy(func(st model.BotStatus) bool {
			return st.IsConnected && st.PhoneNumber != nil && *st.PhoneNumber == "+15550001111"
		})).Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/bot/status",
			strings.NewReader(`{"is_connected":true,"phone_number":"+15550001111"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var res messageResponse
		decode(t, resp, &res)
		assert.Equal(t, "Bot status updated successfully", res.Message)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/bot/status", strings.NewReader(`{"is_connected":`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRestoreSession(t *testing.T) {
	mockSvc := new(serviceMocks.MockSessionService)
	app := fiber.New()
	app.Post("/api/bot/restore-session", RestoreSession(mockSvc))

	t.Run("nothing to restore", func(t *testing.T) {
		mockSvc.On("RestoreLatest", mock.Anything).
			Return(&service.RestoreResult{Restored: false, Message: service.NoSessionsMessage}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/api/bot/restore-session", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var res restoreResponse
		decode(t, resp, &res)
		assert.False(t, res.Success)
		assert.Equal(t, "No session files found to restore", res.Message)
	})

	t.Run("restored", func(t *testing.T) {
		mockSvc.On("RestoreLatest", mock.Anything).Return(&service.RestoreResult{
			Restored: true,
			Message:  "Session restored: creds.json",
			File:     &model.SessionFile{Filename: "creds.json"},
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/api/bot/restore-session", nil))
		var res restoreResponse
		decode(t, resp, &res)
		assert.True(t, res.Success)
		assert.Equal(t, "creds.json", res.Filename)
	})

	t.Run("unavailable", func(t *testing.T) {
		mockSvc.On("RestoreLatest", mock.Anything).
			Return(nil, &service.Error{Op: "restore", Kind: service.KindUnavailable}).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/api/bot/restore-session", nil))
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestGenerateQRAndConnect(t *testing.T) {
	mockSvc := new(serviceMocks.MockStatusService)
	app := fiber.New()
	app.Post("/api/bot/generate-qr", GenerateQR(mockSvc))
	app.Post("/api/bot/connect", ConnectBot(mockSvc))

	token := "whatsapp-auth-00112233445566778899aabbccddeeff"
	mockSvc.On("GenerateQR", mock.Anything).Return(token, nil).Once()
	mockSvc.On("Connect", mock.Anything).Return(&model.BotStatus{IsConnected: true}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/api/bot/generate-qr", nil))
	var qr qrResponse
	decode(t, resp, &qr)
	assert.True(t, qr.Success)
	assert.Equal(t, token, qr.QRCode)

	resp, _ = app.Test(httptest.NewRequest(http.MethodPost, "/api/bot/connect", nil))
	var res messageResponse
	decode(t, resp, &res)
	assert.Equal(t, "WhatsApp connected successfully (simulated)", res.Message)
	mockSvc.AssertExpectations(t)
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	sessions := new(serviceMocks.MockSessionService)
	status := new(serviceMocks.MockStatusService)
	RegisterRoutes(app, Dependencies{
		Store:    storage.NewUnavailable("local", nil),
		Sessions: sessions,
		Status:   status,
		Gatherer: prometheus.NewRegistry(),
	})

	t.Run("not found route", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/non-existent", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var res errorPayload
		decode(t, resp, &res)
		assert.Equal(t, "NOT_FOUND", res.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPut, "/api/health", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

		var res errorPayload
		decode(t, resp, &res)
		assert.Equal(t, "METHOD_NOT_ALLOWED", res.Code)
	})

	t.Run("api prefix", func(t *testing.T) {
		sessions.On("List", mock.Anything).Return([]model.SessionFile{}, nil).Once()
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("metrics", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
