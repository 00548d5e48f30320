package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/otelkit/docscan/internal/scan"
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
}

var scanCmd = &cobra.Command{
	Use:   "scan <image-or-directory>",
	Short: "Extract identity documents from an image or a directory of images",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		journal, err := initJournal(ctx)
		if err != nil {
			return err
		}
		defer journal.Close() //nolint:errcheck

		svc := scan.New(cfg, scan.WithJournal(journal))

		preferred, _ := cmd.Flags().GetString("provider")
		qualityOnly, _ := cmd.Flags().GetBool("quality-only")

		info, err := os.Stat(args[0])
		if err != nil {
			return eris.Wrapf(err, "scan: stat %s", args[0])
		}
		if info.IsDir() {
			return scanDirectory(cmd, svc, args[0], preferred, qualityOnly)
		}
		return scanOne(cmd, svc, args[0], preferred, qualityOnly)
	},
}

func scanOne(cmd *cobra.Command, svc *scan.Service, path, preferred string, qualityOnly bool) error {
	image, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "scan: read %s", path)
	}

	assessment := svc.AssessImageQuality(image)
	if qualityOnly {
		return printJSON(assessment)
	}
	if !assessment.Pass {
		zap.L().Warn("scan: image quality below threshold, scanning anyway",
			zap.String("file", path),
			zap.Int("score", assessment.Score),
			zap.Strings("warnings", assessment.Warnings),
		)
	}

	res, err := svc.SmartScan(cmd.Context(), image, assessment.Score, preferred)
	if err != nil {
		return err
	}

	out := struct {
		File       string `json:"file"`
		Quality    any    `json:"quality"`
		Result     any    `json:"result"`
		Confidence any    `json:"confidence"`
	}{
		File:       path,
		Quality:    assessment,
		Result:     res,
		Confidence: svc.ScoreConfidence(res),
	}
	return printJSON(out)
}

func scanDirectory(cmd *cobra.Command, svc *scan.Service, dir, preferred string, qualityOnly bool) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return eris.Wrapf(err, "scan: read dir %s", dir)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "No image files found.")
		return nil
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(cfg.Scan.MaxConcurrent)

	for _, path := range paths {
		g.Go(func() error {
			image, err := os.ReadFile(path)
			if err != nil {
				return eris.Wrapf(err, "scan: read %s", path)
			}
			assessment := svc.AssessImageQuality(image)
			if qualityOnly {
				zap.L().Info("scan: quality assessed",
					zap.String("file", path),
					zap.Int("score", assessment.Score),
					zap.String("overall", assessment.Overall),
				)
				return nil
			}
			res, err := svc.SmartScan(ctx, image, assessment.Score, preferred)
			if err != nil {
				return err
			}
			zap.L().Info("scan: file done",
				zap.String("file", path),
				zap.String("scan_id", res.ScanID),
				zap.Bool("success", res.Success),
				zap.String("provider", res.Provider),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Scanned %d file(s); outcomes are in the journal (docscan journal list).\n", len(paths))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	scanCmd.Flags().String("provider", "", "preferred provider to try first (claude, gpt4o, gemini, tesseract)")
	scanCmd.Flags().Bool("quality-only", false, "assess image quality without scanning")
	rootCmd.AddCommand(scanCmd)
}
