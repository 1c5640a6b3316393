package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/scholarai/scholar-backend/internal/platform/ctxutil"
	"github.com/scholarai/scholar-backend/internal/platform/logger"
)

// Speech exposes the two transcription entry points the pipeline needs:
// immediate recognition over raw bytes and long-running recognition against
// a gs:// reference with a hard wait ceiling. Both return the assembled
// transcript (first alternative of each result, space-separated, trimmed).
type Speech interface {
	Recognize(ctx context.Context, content []byte, encoding speechpb.RecognitionConfig_AudioEncoding) (string, error)
	RecognizeURI(ctx context.Context, gcsURI string, encoding speechpb.RecognitionConfig_AudioEncoding, ceiling time.Duration) (string, error)
	Close() error
}

type SpeechConfig struct {
	LanguageCode    string
	CredentialsFile string
}

type speechService struct {
	log          *logger.Logger
	client       *speech.Client
	languageCode string
}

func NewSpeech(log *logger.Logger, cfg SpeechConfig) (Speech, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	lang := cfg.LanguageCode
	if lang == "" {
		lang = "en-US"
	}

	c, err := speech.NewClient(context.Background(), ClientOptions(cfg.CredentialsFile)...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}

	return &speechService{
		log:          log.With("service", "gcp.Speech"),
		client:       c,
		languageCode: lang,
	}, nil
}

func (s *speechService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *speechService) Recognize(ctx context.Context, content []byte, encoding speechpb.RecognitionConfig_AudioEncoding) (string, error) {
	ctx = ctxutil.Default(ctx)

	if len(content) == 0 {
		return "", nil
	}

	req := &speechpb.RecognizeRequest{
		Config: s.recognitionConfig(encoding),
		Audio:  &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Content{Content: content}},
	}
	resp, err := s.client.Recognize(ctx, req)
	if err != nil {
		return "", fmt.Errorf("speech recognize: %w", err)
	}
	return joinTranscript(resp.Results), nil
}

func (s *speechService) RecognizeURI(ctx context.Context, gcsURI string, encoding speechpb.RecognitionConfig_AudioEncoding, ceiling time.Duration) (string, error) {
	ctx = ctxutil.Default(ctx)

	if !strings.HasPrefix(gcsURI, "gs://") {
		return "", fmt.Errorf("gcsURI must be gs://... got %q", gcsURI)
	}
	if ceiling <= 0 {
		ceiling = 10 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, ceiling)
	defer cancel()

	req := &speechpb.LongRunningRecognizeRequest{
		Config: s.recognitionConfig(encoding),
		Audio:  &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Uri{Uri: gcsURI}},
	}
	op, err := s.client.LongRunningRecognize(ctx, req)
	if err != nil {
		return "", fmt.Errorf("speech longrunningrecognize: %w", err)
	}
	resp, err := op.Wait(ctx)
	if err != nil {
		return "", fmt.Errorf("speech longrunningrecognize wait: %w", err)
	}
	return joinTranscript(resp.Results), nil
}

func (s *speechService) recognitionConfig(encoding speechpb.RecognitionConfig_AudioEncoding) *speechpb.RecognitionConfig {
	return &speechpb.RecognitionConfig{
		LanguageCode:               s.languageCode,
		Encoding:                   encoding,
		EnableAutomaticPunctuation: true,
	}
}

func joinTranscript(results []*speechpb.SpeechRecognitionResult) string {
	var full strings.Builder
	for _, r := range results {
		if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
			continue
		}
		txt := strings.TrimSpace(r.Alternatives[0].Transcript)
		if txt == "" {
			continue
		}
		if full.Len() > 0 {
			full.WriteString(" ")
		}
		full.WriteString(txt)
	}
	return strings.TrimSpace(full.String())
}
