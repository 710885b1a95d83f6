package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	aoption "github.com/anthropics/anthropic-sdk-go/option"

	"github.com/theimaginaryfoundation/store-assets/screenshots"
	"github.com/theimaginaryfoundation/store-assets/screenshots/fileutils"
)

const (
	anthropicRankMaxTokens    = 2000
	anthropicAnalyzeMaxTokens = 1000
)

// AnthropicOracle asks a Claude model, images sent inline as base64 blocks.
type AnthropicOracle struct {
	client anthropic.Client
	cfg    Config
}

func NewAnthropicOracle(cfg Config) (*AnthropicOracle, error) {
	cfg, err := cfg.validate(NameAnthropic)
	if err != nil {
		return nil, fmt.Errorf("NewAnthropicOracle: %w", err)
	}
	opts := []aoption.RequestOption{
		aoption.WithAPIKey(cfg.APIKey),
		aoption.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, aoption.WithBaseURL(base))
	}
	return &AnthropicOracle{client: anthropic.NewClient(opts...), cfg: cfg}, nil
}

func (o *AnthropicOracle) RankScreenshots(ctx context.Context, paths []string, platform screenshots.Platform) ([]screenshots.RankedScreenshot, error) {
	imgs, err := encodeImages(paths)
	if err != nil {
		return nil, requestError("rank", err)
	}
	blocks := make([]anthropic.ContentBlockParamUnion, 0, 2*len(imgs)+1)
	for _, img := range imgs {
		blocks = append(blocks,
			anthropic.NewImageBlockBase64(img.MediaType, img.Data),
			anthropic.NewTextBlock(FileCaption(img.Name)),
		)
	}
	blocks = append(blocks, anthropic.NewTextBlock(RankingPrompt(platform, o.cfg.App, len(imgs), o.cfg.Limits, false)))

	text, err := o.complete(ctx, blocks, anthropicRankMaxTokens)
	if err != nil {
		return nil, classify("rank", err)
	}
	ranked, err := decodeRanking(text)
	if err != nil {
		return nil, decodeError("rank", err)
	}
	return ranked, nil
}

func (o *AnthropicOracle) AnalyzeScreenshot(ctx context.Context, path string, platform screenshots.Platform) (screenshots.ScreenshotAnalysis, error) {
	img, err := encodeImage(path)
	if err != nil {
		return screenshots.ScreenshotAnalysis{}, requestError("analyze", err)
	}
	blocks := []anthropic.ContentBlockParamUnion{
		anthropic.NewImageBlockBase64(img.MediaType, img.Data),
		anthropic.NewTextBlock(AnalysisPrompt(platform, o.cfg.App, o.cfg.Limits)),
	}
	text, err := o.complete(ctx, blocks, anthropicAnalyzeMaxTokens)
	if err != nil {
		return screenshots.ScreenshotAnalysis{}, classify("analyze", err)
	}
	var out screenshots.ScreenshotAnalysis
	if err := fileutils.DecodeModelJSON(text, &out); err != nil {
		return screenshots.ScreenshotAnalysis{}, decodeError("analyze", err)
	}
	return out, nil
}

func (o *AnthropicOracle) complete(ctx context.Context, blocks []anthropic.ContentBlockParamUnion, maxTokens int64) (string, error) {
	msg, err := o.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(o.cfg.Model),
		MaxTokens: maxTokens,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	})
	if err != nil {
		return "", err
	}
	var parts []string
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			parts = append(parts, tb.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}
