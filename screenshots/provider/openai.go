package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/theimaginaryfoundation/store-assets/screenshots"
	"github.com/theimaginaryfoundation/store-assets/screenshots/fileutils"
)

const (
	openAIRankMaxTokens    = 6000
	openAIAnalyzeMaxTokens = 2000
)

var (
	rankingSchema  = GenerateSchema[rankingEnvelope]()
	analysisSchema = GenerateSchema[screenshots.ScreenshotAnalysis]()
)

// OpenAIOracle uses the Responses API with strict JSON-schema output; images are sent as data URLs.
type OpenAIOracle struct {
	client *openai.Client
	cfg    Config
}

func NewOpenAIOracle(cfg Config) (*OpenAIOracle, error) {
	cfg, err := cfg.validate(NameOpenAI)
	if err != nil {
		return nil, fmt.Errorf("NewOpenAIOracle: %w", err)
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	client := openai.NewClient(opts...)
	return &OpenAIOracle{client: &client, cfg: cfg}, nil
}

func (o *OpenAIOracle) RankScreenshots(ctx context.Context, paths []string, platform screenshots.Platform) ([]screenshots.RankedScreenshot, error) {
	imgs, err := encodeImages(paths)
	if err != nil {
		return nil, requestError("rank", err)
	}
	content := make(responses.ResponseInputMessageContentListParam, 0, 2*len(imgs)+1)
	for _, img := range imgs {
		content = append(content, imageInput(img), textInput(FileCaption(img.Name)))
	}
	content = append(content, textInput(RankingPrompt(platform, o.cfg.App, len(imgs), o.cfg.Limits, true)))

	text, err := o.complete(ctx, content, "ScreenshotRanking", "Ranked screenshots with store copy", rankingSchema, openAIRankMaxTokens)
	if err != nil {
		return nil, classify("rank", err)
	}
	ranked, err := decodeRanking(text)
	if err != nil {
		return nil, decodeError("rank", err)
	}
	return ranked, nil
}

func (o *OpenAIOracle) AnalyzeScreenshot(ctx context.Context, path string, platform screenshots.Platform) (screenshots.ScreenshotAnalysis, error) {
	img, err := encodeImage(path)
	if err != nil {
		return screenshots.ScreenshotAnalysis{}, requestError("analyze", err)
	}
	content := responses.ResponseInputMessageContentListParam{
		imageInput(img),
		textInput(AnalysisPrompt(platform, o.cfg.App, o.cfg.Limits)),
	}
	text, err := o.complete(ctx, content, "ScreenshotAnalysis", "Store copy for one screenshot", analysisSchema, openAIAnalyzeMaxTokens)
	if err != nil {
		return screenshots.ScreenshotAnalysis{}, classify("analyze", err)
	}
	var out screenshots.ScreenshotAnalysis
	if err := fileutils.DecodeModelJSON(text, &out); err != nil {
		return screenshots.ScreenshotAnalysis{}, decodeError("analyze", err)
	}
	return out, nil
}

func (o *OpenAIOracle) complete(ctx context.Context, content responses.ResponseInputMessageContentListParam, name, description string, schema map[string]interface{}, maxTokens int64) (string, error) {
	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        name,
			Schema:      schema,
			Strict:      openai.Bool(true),
			Description: openai.String(description),
			Type:        "json_schema",
		},
	}
	params := responses.ResponseNewParams{
		Model:           o.cfg.Model,
		MaxOutputTokens: openai.Int(maxTokens),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(content, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}
	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return "", err
	}
	return resp.OutputText(), nil
}

func imageInput(img encodedImage) responses.ResponseInputContentUnionParam {
	return responses.ResponseInputContentUnionParam{
		OfInputImage: &responses.ResponseInputImageParam{
			Detail:   responses.ResponseInputImageDetailAuto,
			ImageURL: openai.String(img.dataURL()),
		},
	}
}

func textInput(text string) responses.ResponseInputContentUnionParam {
	return responses.ResponseInputContentUnionParam{
		OfInputText: &responses.ResponseInputTextParam{Text: text},
	}
}
