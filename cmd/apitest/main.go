package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/zapponejosh/missal1962/internal/calendar"
)

// =============================================================================
// Response Types - Match the actual API response structure
// =============================================================================

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// YearResponse is the response for /api/v1/years/{year}
type YearResponse struct {
	Year int            `json:"year"`
	Days []calendar.Day `json:"days"`
}

// HealthResponse is the response for /health
type HealthResponse struct {
	Status string `json:"status"`
	Cache  bool   `json:"cache"`
	Rules  string `json:"rules"`
}

// =============================================================================
// Test Runner
// =============================================================================

type TestRunner struct {
	baseURL      string
	client       *http.Client
	verbose      bool
	successCount int
	errorCount   int
	errors       []string
}

func NewTestRunner(baseURL string, verbose bool) *TestRunner {
	return &TestRunner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		verbose: verbose,
	}
}

func (tr *TestRunner) Run() {
	fmt.Println("==============================================")
	fmt.Println("Missal 1962 API Test Suite")
	fmt.Println("==============================================")
	fmt.Printf("Base URL: %s\n", tr.baseURL)
	fmt.Println()

	tr.testHealth()
	tr.testYear()
	tr.testAnchors()
	tr.testSpecificDates()
	tr.testObservances()
	tr.testEdgeCases()
	tr.testCalendarExport()
	tr.testDecember()

	tr.printSummary()
}

// =============================================================================
// Test Groups
// =============================================================================

func (tr *TestRunner) testHealth() {
	tr.printSection("Health Check")

	resp, err := tr.get("/health")
	if err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	var health HealthResponse
	if err := tr.parseDataAs(resp, &health); err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	if health.Status == "healthy" {
		tr.recordSuccess(fmt.Sprintf("Health check passed (cache=%t, rules=%s)", health.Cache, health.Rules))
	} else {
		tr.recordError("Health", fmt.Sprintf("Unexpected status: %s", health.Status))
	}
}

func (tr *TestRunner) testYear() {
	tr.printSection("Whole Years")

	testCases := []struct {
		year int
		days int
	}{
		{2008, 366},
		{2022, 365},
		{2038, 365},
		{2100, 365},
	}

	for _, tc := range testCases {
		resp, err := tr.get(fmt.Sprintf("/api/v1/years/%d", tc.year))
		if err != nil {
			tr.recordError(fmt.Sprint(tc.year), err.Error())
			continue
		}

		var data YearResponse
		if err := tr.parseDataAs(resp, &data); err != nil {
			tr.recordError(fmt.Sprint(tc.year), err.Error())
			continue
		}

		if len(data.Days) != tc.days {
			tr.recordError(fmt.Sprint(tc.year), fmt.Sprintf("Expected %d days, got %d", tc.days, len(data.Days)))
			continue
		}

		crowded := 0
		for _, day := range data.Days {
			if len(day.Identifiers) > 2 {
				crowded++
			}
		}
		if crowded > 0 {
			tr.recordError(fmt.Sprint(tc.year), fmt.Sprintf("%d day(s) carry more than two observances", crowded))
			continue
		}

		tr.recordSuccess(fmt.Sprintf("%d: %d days", tc.year, len(data.Days)))
	}
}

func (tr *TestRunner) testAnchors() {
	tr.printSection("Anchor Dates")

	testCases := []struct {
		year   int
		easter string
		advent string
	}{
		{2008, "2008-03-23", "2008-11-30"},
		{2024, "2024-03-31", "2024-12-01"},
		{2025, "2025-04-20", "2025-11-30"},
	}

	for _, tc := range testCases {
		resp, err := tr.get(fmt.Sprintf("/api/v1/years/%d/anchors", tc.year))
		if err != nil {
			tr.recordError(fmt.Sprint(tc.year), err.Error())
			continue
		}

		var anchors map[string]any
		if err := tr.parseDataAs(resp, &anchors); err != nil {
			tr.recordError(fmt.Sprint(tc.year), err.Error())
			continue
		}

		if anchors["easter"] != tc.easter || anchors["advent_sunday"] != tc.advent {
			tr.recordError(fmt.Sprint(tc.year), fmt.Sprintf("Expected Easter %s / Advent %s, got %v / %v",
				tc.easter, tc.advent, anchors["easter"], anchors["advent_sunday"]))
			continue
		}

		tr.recordSuccess(fmt.Sprintf("%d: Easter %s, Advent %s", tc.year, tc.easter, tc.advent))
	}
}

func (tr *TestRunner) testSpecificDates() {
	tr.printSection("Specific Date Tests (2008)")

	testCases := []struct {
		date        string
		expected    string
		description string
	}{
		{"2008-01-01", "01_01.octava_nativitatis:1", "Octave of the Nativity"},
		{"2008-01-13", "dom_sanctae_familiae:2", "Holy Family"},
		{"2008-01-20", "dom_septuagesima:2", "Septuagesima"},
		{"2008-02-06", "dies_cinerum:1", "Ash Wednesday"},
		{"2008-03-23", "dom_resurrectionis:1", "Easter Sunday"},
		{"2008-05-11", "dom_pentecostes:1", "Pentecost"},
		{"2008-10-26", "jesu_christi_regis:1", "Christ the King"},
		{"2008-11-30", "dom_adventus_1:1", "First Sunday of Advent"},
		{"2008-12-25", "12_25.nativitas_domini:1", "Christmas"},
		{"2008-12-28", "dom_octavam_nativitatis:2", "Sunday within the Octave"},
	}

	for _, tc := range testCases {
		resp, err := tr.get(fmt.Sprintf("/api/v1/years/2008/days/%s", tc.date))
		if err != nil {
			tr.recordError(tc.date, err.Error())
			continue
		}

		var day calendar.Day
		if err := tr.parseDataAs(resp, &day); err != nil {
			tr.recordError(tc.date, err.Error())
			continue
		}

		if day.Has(tc.expected) {
			tr.recordSuccess(fmt.Sprintf("%s: %s (%s)", tc.date, tc.expected, tc.description))
		} else {
			tr.recordError(tc.date, fmt.Sprintf("Expected '%s', got %v", tc.expected, day.Tokens()))
		}

		if tr.verbose {
			tr.printDayDetail(day)
		}
	}
}

func (tr *TestRunner) testObservances() {
	tr.printSection("Observance Lookup")

	testCases := []struct {
		year       int
		identifier string
		date       string
	}{
		{2008, "dom_adventus_1", "2008-11-30"},
		{2008, "dom_adventus_1:1", "2008-11-30"},
		{2038, "dom_post_pentecost_24", "2038-11-21"},
		{2024, "f5_quadragesima_2", "2024-02-29"},
	}

	for _, tc := range testCases {
		resp, err := tr.get(fmt.Sprintf("/api/v1/years/%d/observances/%s", tc.year, tc.identifier))
		if err != nil {
			tr.recordError(tc.identifier, err.Error())
			continue
		}

		var day calendar.Day
		if err := tr.parseDataAs(resp, &day); err != nil {
			tr.recordError(tc.identifier, err.Error())
			continue
		}

		if got := calendar.FormatDate(day.Date); got == tc.date {
			tr.recordSuccess(fmt.Sprintf("%d %s: %s", tc.year, tc.identifier, got))
		} else {
			tr.recordError(tc.identifier, fmt.Sprintf("Expected %s, got %s", tc.date, got))
		}
	}
}

func (tr *TestRunner) testEdgeCases() {
	tr.printSection("Edge Cases")

	testCases := []struct {
		path        string
		status      int
		description string
	}{
		{"/api/v1/years/abc", http.StatusBadRequest, "Non-numeric year rejected"},
		{"/api/v1/years/1400", http.StatusBadRequest, "Year before 1583 rejected"},
		{"/api/v1/years/2008/days/invalid", http.StatusBadRequest, "Invalid date format rejected"},
		{"/api/v1/years/2008/days/2009-01-01", http.StatusBadRequest, "Date outside the year rejected"},
		{"/api/v1/years/2022/days/2022-02-29", http.StatusBadRequest, "Feb 29 in a common year rejected"},
		{"/api/v1/years/2008/observances/no_such_day", http.StatusNotFound, "Unknown observance is 404"},
		{"/api/v1/years/2038/observances/dom_post_pentecost_23", http.StatusNotFound, "Overwritten Sunday is 404"},
		{"/api/v1/nothing", http.StatusNotFound, "Unknown route is 404"},
	}

	for _, tc := range testCases {
		resp, err := tr.getRaw(tc.path)
		if err != nil {
			tr.recordError(tc.path, err.Error())
			continue
		}
		resp.Body.Close()

		if resp.StatusCode == tc.status {
			tr.recordSuccess(tc.description)
		} else {
			tr.recordError(tc.path, fmt.Sprintf("Expected HTTP %d, got %d", tc.status, resp.StatusCode))
		}
	}
}

func (tr *TestRunner) testCalendarExport() {
	tr.printSection("Calendar Export")

	resp, err := tr.getRaw("/api/v1/years/2008/calendar.ics")
	if err != nil {
		tr.recordError("ICS", err.Error())
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		tr.recordError("ICS", err.Error())
		return
	}

	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/calendar") {
		tr.recordError("ICS", fmt.Sprintf("Unexpected content type %q", resp.Header.Get("Content-Type")))
		return
	}
	if !strings.HasPrefix(string(body), "BEGIN:VCALENDAR\r\n") {
		tr.recordError("ICS", "Body does not start with BEGIN:VCALENDAR")
		return
	}

	tr.recordSuccess(fmt.Sprintf("ICS export: %d events", strings.Count(string(body), "BEGIN:VEVENT")))
}

func (tr *TestRunner) testDecember() {
	tr.printSection("Full December 2008 (Advent → Christmas)")

	for day := 1; day <= 31; day++ {
		date := fmt.Sprintf("2008-12-%02d", day)
		resp, err := tr.get(fmt.Sprintf("/api/v1/years/2008/days/%s", date))
		if err != nil {
			tr.recordError(date, err.Error())
			continue
		}

		var data calendar.Day
		if err := tr.parseDataAs(resp, &data); err != nil {
			tr.recordError(date, err.Error())
			continue
		}

		tr.recordSuccess(fmt.Sprintf("%s %s: %s",
			date, calendar.DayName(data.Date), strings.Join(data.Tokens(), " ")))
	}
}

// =============================================================================
// Helper Methods
// =============================================================================

func (tr *TestRunner) get(path string) (*APIResponse, error) {
	resp, err := tr.getRaw(path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read error: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	if !apiResp.Success {
		errMsg := "unknown error"
		if apiResp.Error != nil {
			errMsg = apiResp.Error.Message
		}
		return nil, fmt.Errorf("API error: %s", errMsg)
	}

	return &apiResp, nil
}

func (tr *TestRunner) getRaw(path string) (*http.Response, error) {
	url := tr.baseURL + path
	return tr.client.Get(url)
}

func (tr *TestRunner) parseDataAs(resp *APIResponse, target interface{}) error {
	// Re-marshal and unmarshal to convert map to struct
	dataBytes, err := json.Marshal(resp.Data)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}
	return json.Unmarshal(dataBytes, target)
}

func (tr *TestRunner) printSection(name string) {
	fmt.Println()
	fmt.Printf("--- %s ---\n", name)
	fmt.Println()
}

func (tr *TestRunner) printDayDetail(day calendar.Day) {
	for _, id := range day.Identifiers {
		if id.Precedence != nil {
			fmt.Printf("    %s (class %d)\n", id.Name, *id.Precedence)
		} else {
			fmt.Printf("    %s\n", id.Name)
		}
	}
	fmt.Println()
}

func (tr *TestRunner) recordSuccess(msg string) {
	tr.successCount++
	fmt.Printf("  ✓ %s\n", msg)
}

func (tr *TestRunner) recordError(context, msg string) {
	tr.errorCount++
	errStr := fmt.Sprintf("%s: %s", context, msg)
	tr.errors = append(tr.errors, errStr)
	fmt.Printf("  ✗ %s\n", errStr)
}

func (tr *TestRunner) printSummary() {
	fmt.Println()
	fmt.Println("==============================================")
	fmt.Println("Summary")
	fmt.Println("==============================================")
	fmt.Printf("  Passed: %d\n", tr.successCount)
	fmt.Printf("  Failed: %d\n", tr.errorCount)
	fmt.Println()

	if tr.errorCount > 0 {
		fmt.Println("Failures:")
		for _, err := range tr.errors {
			fmt.Printf("  • %s\n", err)
		}
		fmt.Println()
	}

	if tr.errorCount == 0 {
		fmt.Println("All tests passed! ✓")
	} else {
		fmt.Printf("Tests completed with %d failure(s)\n", tr.errorCount)
	}
}

// =============================================================================
// Main
// =============================================================================

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	verbose := flag.Bool("v", false, "Verbose output (show observance details)")
	flag.Parse()

	// Check if server is reachable
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}
	resp.Body.Close()

	runner := NewTestRunner(*baseURL, *verbose)
	runner.Run()

	// Exit with error code if tests failed
	if runner.errorCount > 0 {
		os.Exit(1)
	}
}
