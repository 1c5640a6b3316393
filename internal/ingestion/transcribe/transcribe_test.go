package transcribe

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	speechpb "cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/scholarai/scholar-backend/internal/platform/apierr"
	"github.com/scholarai/scholar-backend/internal/platform/logger"
)

type fakeMedia struct {
	duration float64
	probeErr error
}

func (f *fakeMedia) ProbeDurationSeconds(ctx context.Context, path string) (float64, error) {
	return f.duration, f.probeErr
}

func (f *fakeMedia) ExtractPDFText(ctx context.Context, pdfPath string) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeMedia) ConvertOfficeToPDF(ctx context.Context, inputPath, outDir string) (string, error) {
	return "", errors.New("not implemented")
}

type fakeSpeech struct {
	transcript string
	err        error

	recognizeCalls    int
	recognizeURICalls int
	lastContent       []byte
	lastURI           string
	lastEncoding      speechpb.RecognitionConfig_AudioEncoding
	lastCeiling       time.Duration
}

func (f *fakeSpeech) Recognize(ctx context.Context, content []byte, encoding speechpb.RecognitionConfig_AudioEncoding) (string, error) {
	f.recognizeCalls++
	f.lastContent = content
	f.lastEncoding = encoding
	return f.transcript, f.err
}

func (f *fakeSpeech) RecognizeURI(ctx context.Context, gcsURI string, encoding speechpb.RecognitionConfig_AudioEncoding, ceiling time.Duration) (string, error) {
	f.recognizeURICalls++
	f.lastURI = gcsURI
	f.lastEncoding = encoding
	f.lastCeiling = ceiling
	return f.transcript, f.err
}

func (f *fakeSpeech) Close() error { return nil }

type fakeBucket struct {
	uploadCalls int
	deleteCalls int
	uploadedKey string
	deletedKey  string
	uploadErr   error
	deleteErr   error
}

func (f *fakeBucket) Upload(ctx context.Context, key string, r io.Reader) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeBucket) UploadFile(ctx context.Context, key, localPath string) (string, error) {
	f.uploadCalls++
	f.uploadedKey = key
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return f.ObjectURI(key), nil
}

func (f *fakeBucket) Delete(ctx context.Context, key string) error {
	f.deleteCalls++
	f.deletedKey = key
	return f.deleteErr
}

func (f *fakeBucket) ObjectURI(key string) string {
	return "gs://scratch/" + key
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	return log
}

func writeTempAudio(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("fake-audio-bytes"), 0o644); err != nil {
		t.Fatalf("write temp audio: %v", err)
	}
	return path
}

func TestTranscribeShortClipUsesInlineRecognition(t *testing.T) {
	speech := &fakeSpeech{transcript: "hello world"}
	bucket := &fakeBucket{}
	tr := New(testLogger(t), &fakeMedia{duration: 30}, speech, bucket, Config{})

	path := writeTempAudio(t, "lecture.mp3")
	got, err := tr.TranscribeFile(context.Background(), path, "lecture.mp3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello world" {
		t.Fatalf("transcript: want=%q got=%q", "hello world", got)
	}
	if speech.recognizeCalls != 1 || speech.recognizeURICalls != 0 {
		t.Fatalf("expected inline path, got inline=%d uri=%d", speech.recognizeCalls, speech.recognizeURICalls)
	}
	if string(speech.lastContent) != "fake-audio-bytes" {
		t.Fatalf("recognize got wrong content %q", speech.lastContent)
	}
	if bucket.uploadCalls != 0 {
		t.Fatalf("inline path must not touch the bucket, got %d uploads", bucket.uploadCalls)
	}
}

func TestTranscribeClipAtThresholdStaysInline(t *testing.T) {
	speech := &fakeSpeech{transcript: "edge"}
	tr := New(testLogger(t), &fakeMedia{duration: 55}, speech, &fakeBucket{}, Config{})

	path := writeTempAudio(t, "edge.wav")
	if _, err := tr.TranscribeFile(context.Background(), path, "edge.wav"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if speech.recognizeCalls != 1 || speech.recognizeURICalls != 0 {
		t.Fatalf("55s clip must be inline, got inline=%d uri=%d", speech.recognizeCalls, speech.recognizeURICalls)
	}
	if speech.lastEncoding != speechpb.RecognitionConfig_LINEAR16 {
		t.Fatalf("wav encoding: want LINEAR16 got %v", speech.lastEncoding)
	}
}

func TestTranscribeLongClipStagesAndDeletesScratch(t *testing.T) {
	speech := &fakeSpeech{transcript: "long transcript"}
	bucket := &fakeBucket{}
	tr := New(testLogger(t), &fakeMedia{duration: 120}, speech, bucket, Config{AsyncCeiling: 600 * time.Second})

	path := writeTempAudio(t, "Long Lecture.mp3")
	got, err := tr.TranscribeFile(context.Background(), path, "Long Lecture.mp3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "long transcript" {
		t.Fatalf("transcript: want=%q got=%q", "long transcript", got)
	}
	if speech.recognizeURICalls != 1 || speech.recognizeCalls != 0 {
		t.Fatalf("expected uri path, got inline=%d uri=%d", speech.recognizeCalls, speech.recognizeURICalls)
	}
	if bucket.uploadCalls != 1 {
		t.Fatalf("expected 1 upload, got %d", bucket.uploadCalls)
	}
	if bucket.deleteCalls != 1 {
		t.Fatalf("scratch object must be deleted, got %d deletes", bucket.deleteCalls)
	}
	if bucket.deletedKey != bucket.uploadedKey {
		t.Fatalf("deleted key %q != uploaded key %q", bucket.deletedKey, bucket.uploadedKey)
	}
	if !strings.HasPrefix(bucket.uploadedKey, "scratch_audio_") {
		t.Fatalf("unexpected scratch key %q", bucket.uploadedKey)
	}
	if speech.lastURI != "gs://scratch/"+bucket.uploadedKey {
		t.Fatalf("recognize uri %q does not match staged object", speech.lastURI)
	}
	if speech.lastCeiling != 600*time.Second {
		t.Fatalf("ceiling: want=600s got=%v", speech.lastCeiling)
	}
}

func TestTranscribeLongClipDeletesScratchOnRecognitionFailure(t *testing.T) {
	speech := &fakeSpeech{err: errors.New("speech backend down")}
	bucket := &fakeBucket{}
	tr := New(testLogger(t), &fakeMedia{duration: 120}, speech, bucket, Config{})

	path := writeTempAudio(t, "lecture.mp3")
	_, err := tr.TranscribeFile(context.Background(), path, "lecture.mp3")
	if err == nil {
		t.Fatal("expected error")
	}
	if !apierr.IsCode(err, apierr.CodeTranscriptionFailed) {
		t.Fatalf("want transcription_failed, got %v", err)
	}
	if bucket.deleteCalls != 1 {
		t.Fatalf("scratch object must be deleted on failure too, got %d deletes", bucket.deleteCalls)
	}
}

func TestTranscribeScratchDeleteFailureDoesNotFailRequest(t *testing.T) {
	speech := &fakeSpeech{transcript: "fine"}
	bucket := &fakeBucket{deleteErr: errors.New("bucket gone")}
	tr := New(testLogger(t), &fakeMedia{duration: 120}, speech, bucket, Config{})

	path := writeTempAudio(t, "lecture.mp3")
	got, err := tr.TranscribeFile(context.Background(), path, "lecture.mp3")
	if err != nil {
		t.Fatalf("delete failure must not propagate: %v", err)
	}
	if got != "fine" {
		t.Fatalf("transcript: want=%q got=%q", "fine", got)
	}
}

func TestTranscribeProbeFailureFallsBackToInline(t *testing.T) {
	speech := &fakeSpeech{transcript: "ok"}
	bucket := &fakeBucket{}
	tr := New(testLogger(t), &fakeMedia{probeErr: errors.New("ffprobe missing")}, speech, bucket, Config{})

	path := writeTempAudio(t, "clip.ogg")
	if _, err := tr.TranscribeFile(context.Background(), path, "clip.ogg"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if speech.recognizeCalls != 1 || bucket.uploadCalls != 0 {
		t.Fatalf("probe failure must use inline path, inline=%d uploads=%d", speech.recognizeCalls, bucket.uploadCalls)
	}
	if speech.lastEncoding != speechpb.RecognitionConfig_OGG_OPUS {
		t.Fatalf("ogg encoding: want OGG_OPUS got %v", speech.lastEncoding)
	}
}

func TestEncodingForExtDefaultsToMP3(t *testing.T) {
	if got := encodingForExt(".m4a"); got != speechpb.RecognitionConfig_MP3 {
		t.Fatalf("m4a: want MP3 got %v", got)
	}
	if got := encodingForExt(".flac"); got != speechpb.RecognitionConfig_FLAC {
		t.Fatalf("flac: want FLAC got %v", got)
	}
}
