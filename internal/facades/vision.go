package facades

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"regexp"
	"time"

	"github.com/adilbek/plantscan-api/internal/logger"
	"github.com/adilbek/plantscan-api/internal/models"
)

// FallbackAccuracy is the fixed score recorded when classification cannot
// be completed.
const FallbackAccuracy = 85

// classifyPrompt asks the model for exactly the seven fields and nothing else.
const classifyPrompt = `You are an expert botanist. Analyze this plant photo and respond in JSON format using exactly these keys, with no text outside the JSON object:
{
  "commonName": "",
  "scientificName": "",
  "description": "",
  "origin": "",
  "sunlight": "",
  "water": "",
  "growthRate": ""
}`

// jsonBlockRegexp matches the first brace-delimited block in free-form text.
var jsonBlockRegexp = regexp.MustCompile(`(?s)\{.*\}`)

// VisionFacade calls an external vision-language endpoint to classify plant
// photos. It degrades to a fixed placeholder record on any failure, so the
// identify flow never fails because of the external service.
type VisionFacade struct {
	client *http.Client
	apiURL string
	apiKey string
}

// NewVisionFacade creates a facade for the given generateContent-style
// endpoint. An empty apiKey is allowed: every call then yields the fallback.
func NewVisionFacade(apiURL, apiKey string, timeout time.Duration) *VisionFacade {
	return &VisionFacade{
		client: &http.Client{Timeout: timeout},
		apiURL: apiURL,
		apiKey: apiKey,
	}
}

// generateRequest is the wire format of the vision endpoint request.
type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generatePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// generateResponse holds the parts of the endpoint response this facade reads.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// visionResult is the optional-field record extracted from the model output.
// The upstream text is unstructured, so every field may legitimately be absent.
type visionResult struct {
	CommonName     string `json:"commonName"`
	ScientificName string `json:"scientificName"`
	Description    string `json:"description"`
	Origin         string `json:"origin"`
	Sunlight       string `json:"sunlight"`
	Water          string `json:"water"`
	GrowthRate     string `json:"growthRate"`
	Confidence     *int   `json:"confidence"`
}

// Classify sends the image to the external endpoint and returns the extracted
// plant record with an accuracy score. It never fails outward: any transport
// error, non-success status, timeout, or unparseable response yields the
// fallback record with FallbackAccuracy.
func (f *VisionFacade) Classify(ctx context.Context, image []byte, mimeType string) (*models.PlantInfo, int) {
	if f.apiKey == "" {
		logger.Log.Warnw("vision API key not configured, using fallback record")
		return fallbackPlantInfo(), FallbackAccuracy
	}

	text, err := f.generate(ctx, image, mimeType)
	if err != nil {
		logger.Log.Errorw("vision call failed", "error", err)
		return fallbackPlantInfo(), FallbackAccuracy
	}

	result, err := extractResult(text)
	if err != nil {
		logger.Log.Errorw("vision response extraction failed", "error", err)
		return fallbackPlantInfo(), FallbackAccuracy
	}

	info := &models.PlantInfo{
		CommonName:     result.CommonName,
		ScientificName: result.ScientificName,
		Description:    result.Description,
		Origin:         result.Origin,
		Sunlight:       result.Sunlight,
		Water:          result.Water,
		GrowthRate:     result.GrowthRate,
	}

	accuracy := synthesizeAccuracy(result.Confidence)
	logger.Log.Infow("plant classified",
		"common_name", info.CommonName,
		"scientific_name", info.ScientificName,
		"accuracy", accuracy,
	)
	return info, accuracy
}

// generate performs the HTTP round-trip and returns the raw model text.
func (f *VisionFacade) generate(ctx context.Context, image []byte, mimeType string) (string, error) {
	body := generateRequest{
		Contents: []generateContent{
			{Parts: []generatePart{{Text: classifyPrompt}}},
			{Parts: []generatePart{{InlineData: &inlineData{
				MimeType: mimeType,
				Data:     base64.StdEncoding.EncodeToString(image),
			}}}},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	url := f.apiURL + "?key=" + f.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("vision endpoint returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("vision response contains no candidates")
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// extractResult pulls the first brace-delimited JSON block out of the model
// text and parses it. The required name fields must both be present.
func extractResult(text string) (*visionResult, error) {
	block := jsonBlockRegexp.FindString(text)
	if block == "" {
		return nil, fmt.Errorf("no JSON block in vision response")
	}

	var result visionResult
	if err := json.Unmarshal([]byte(block), &result); err != nil {
		return nil, fmt.Errorf("parse vision JSON: %w", err)
	}
	if result.CommonName == "" || result.ScientificName == "" {
		return nil, fmt.Errorf("vision response is missing required name fields")
	}

	return &result, nil
}

// synthesizeAccuracy uses the model-supplied confidence clamped to [0, 100]
// when present, otherwise a pseudo-random score in [90, 99].
func synthesizeAccuracy(confidence *int) int {
	if confidence != nil {
		c := *confidence
		if c < 0 {
			c = 0
		}
		if c > 100 {
			c = 100
		}
		return c
	}
	return 90 + rand.Intn(10)
}

// fallbackPlantInfo returns the fixed placeholder record.
func fallbackPlantInfo() *models.PlantInfo {
	return &models.PlantInfo{
		CommonName:     "Unknown plant",
		ScientificName: "Species unknown",
		Description:    "The plant could not be identified. Try again with a higher quality photo.",
		Origin:         "Unknown",
		Sunlight:       "Moderate light",
		Water:          "Moderate watering",
		GrowthRate:     "Moderate",
	}
}
