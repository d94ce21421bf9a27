package support

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/nitya2202/ocr-string-validation-tool/internal/config"
	"github.com/nitya2202/ocr-string-validation-tool/internal/server"
)

// HTTPTestServerWrapper runs the validation server on an httptest listener,
// so server scenarios exercise the real handlers without spawning a process
// or binding a fixed port.
type HTTPTestServerWrapper struct {
	HTTP       *httptest.Server
	validation *server.Server
}

// theValidationServerIsRunning starts an in-process validation server over
// the scenario's dataset directories.
func (tc *TestContext) theValidationServerIsRunning() error {
	if tc.TestServer != nil {
		return nil
	}

	cfg := config.DefaultConfig()
	cfg.DataDir = tc.DataDir
	cfg.OutputDir = tc.OutputDir
	if tc.Language != "" {
		cfg.Language = tc.Language
	}

	validationServer, err := server.NewServer(server.Config{
		Host:             "127.0.0.1",
		CORSOrigin:       "*",
		TimeoutSec:       30,
		WebSocketEnabled: false,
		AppConfig:        cfg,
	})
	if err != nil {
		return fmt.Errorf("starting validation server: %w", err)
	}

	mux := http.NewServeMux()
	validationServer.SetupRoutes(mux)

	tc.TestServer = &HTTPTestServerWrapper{
		HTTP:       httptest.NewServer(mux),
		validation: validationServer,
	}
	return nil
}

// stopTestHTTPServer shuts down the in-process server.
func (tc *TestContext) stopTestHTTPServer() error {
	if tc.TestServer == nil {
		return nil
	}
	tc.TestServer.HTTP.Close()
	err := tc.TestServer.validation.Close()
	tc.TestServer = nil
	return err
}

// recordResponse stores the response state for the verification steps.
func (tc *TestContext) recordResponse(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	tc.LastHTTPStatusCode = resp.StatusCode
	tc.LastHTTPResponse = string(body)
	tc.LastOutput = string(body)
	return nil
}

// iGET makes a GET request to the running test server.
func (tc *TestContext) iGET(endpoint string) error {
	if tc.TestServer == nil {
		return errors.New("no test server running")
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(tc.TestServer.HTTP.URL + endpoint)
	if err != nil {
		return fmt.Errorf("GET %s: %w", endpoint, err)
	}
	return tc.recordResponse(resp)
}

// iPOSTWithJSON posts a JSON document to the running test server.
func (tc *TestContext) iPOSTWithJSON(endpoint string, body *godog.DocString) error {
	if tc.TestServer == nil {
		return errors.New("no test server running")
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Post(tc.TestServer.HTTP.URL+endpoint, "application/json",
		strings.NewReader(body.Content))
	if err != nil {
		return fmt.Errorf("POST %s: %w", endpoint, err)
	}
	return tc.recordResponse(resp)
}

// theResponseStatusShouldBe verifies the HTTP status code.
func (tc *TestContext) theResponseStatusShouldBe(want int) error {
	if tc.LastHTTPStatusCode != want {
		return fmt.Errorf("got status %d, want %d\nbody:\n%s",
			tc.LastHTTPStatusCode, want, tc.LastHTTPResponse)
	}
	return nil
}

// theResponseShouldContain verifies the response body contains text.
func (tc *TestContext) theResponseShouldContain(want string) error {
	if !strings.Contains(tc.LastHTTPResponse, want) {
		return fmt.Errorf("response missing %q, body:\n%s", want, tc.LastHTTPResponse)
	}
	return nil
}

// RegisterServerSteps registers HTTP server steps.
func (tc *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the validation server is running$`, tc.theValidationServerIsRunning)
	sc.Step(`^I GET "([^"]*)"$`, tc.iGET)
	sc.Step(`^I POST "([^"]*)" with JSON:$`, tc.iPOSTWithJSON)
	sc.Step(`^the response status should be (\d+)$`, tc.theResponseStatusShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, tc.theResponseShouldContain)
}
