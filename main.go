package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"clipstream/config"
	"clipstream/media"
	"clipstream/processors"
	"clipstream/server"
	"clipstream/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}
	if err := cfg.EnsureFolders(); err != nil {
		log.Fatalf("prepare folders: %v", err)
	}

	store, err := storage.Open(context.Background(), cfg)
	if err != nil {
		log.Fatalf("open result store: %v", err)
	}

	prober := media.NewProber(nil)
	cutter := media.NewSegmenter(nil)
	toolkit := media.NewToolkit(nil)

	extractor := processors.NewClipExtractor(
		toolkit,
		processors.PickTranscriber(cfg),
		processors.PickTextRecognizer(),
		processors.PickVisualRecognizer(cfg),
	)
	summarizer := processors.NewContentSummarizer(
		processors.PickTranslator(cfg),
		processors.TextRankRanker{},
		processors.NewEngineCache(),
	)

	streamer := &processors.Streamer{
		Prober:         prober,
		Cutter:         cutter,
		Downloader:     media.NewDownloader(nil),
		Extractor:      extractor,
		Summarizer:     summarizer,
		Namer:          processors.ClipNamer{Ranker: processors.TextRankRanker{}},
		Aggregator:     processors.NewSummaryAggregator(cfg.DetectionConfidence, cfg.ClassificationConfidence),
		Fake:           processors.NewHeuristicFakeDetector(),
		WorkRoot:       cfg.OutputFolder,
		ClipDuration:   cfg.DefaultClipDuration,
		TargetLanguage: cfg.DefaultTargetLanguage,
	}

	srv := &server.Server{
		Cfg:      cfg,
		Streamer: streamer,
		Store:    store,
		Prober:   prober,
		Cutter:   cutter,
	}
	mux := http.NewServeMux()
	srv.Routes(mux)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("listening on :%s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatalf("server: %v", err)
	}
}
