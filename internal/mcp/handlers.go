package mcp

import (
	"context"
	"fmt"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/simcheck/internal/constants"
	"github.com/nvandessel/simcheck/internal/pathutil"
	"github.com/nvandessel/simcheck/internal/ratelimit"
)

// registerTools registers all simcheck MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "simcheck_compare",
		Description: "Compare two source files and report their similarity percentage (identifier renaming does not affect the score)",
	}, s.handleCompare)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "simcheck_scan",
		Description: "Compare one source file against every file in a directory, most similar first",
	}, s.handleScan)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "simcheck_canonicalize",
		Description: "Show the canonical token stream a file is compared as",
	}, s.handleCanonicalize)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "simcheck_history",
		Description: "List recent comparisons recorded in the project history",
	}, s.handleHistory)
}

// resolvePath confines a tool-supplied path to the project root.
func (s *Server) resolvePath(path string) (string, error) {
	return pathutil.ConfinePath(path, []string{s.root})
}

func (s *Server) handleCompare(ctx context.Context, req *sdk.CallToolRequest, args CompareInput) (_ *sdk.CallToolResult, _ CompareOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("simcheck_compare", start, retErr, map[string]any{
			"file_a": args.FileA, "file_b": args.FileB, "symmetric": args.Symmetric,
		})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "simcheck_compare"); err != nil {
		return nil, CompareOutput{}, err
	}

	a, err := s.resolvePath(args.FileA)
	if err != nil {
		return nil, CompareOutput{}, fmt.Errorf("file_a: %w", err)
	}
	b, err := s.resolvePath(args.FileB)
	if err != nil {
		return nil, CompareOutput{}, fmt.Errorf("file_b: %w", err)
	}

	symmetric := args.Symmetric || s.settings.Scoring.Symmetric
	res, err := s.comparator.CompareFiles(ctx, a, b, symmetric)
	if err != nil {
		return nil, CompareOutput{}, fmt.Errorf("comparison failed: %w", err)
	}

	return nil, CompareOutput{
		FileA:      args.FileA,
		FileB:      args.FileB,
		Percent:    res.Percent,
		Forward:    res.Forward,
		Backward:   res.Backward,
		Symmetric:  res.Symmetric,
		Degenerate: res.Degenerate,
		Matches:    res.Counts.Match,
		Edits:      res.Counts.Edits(),
	}, nil
}

func (s *Server) handleScan(ctx context.Context, req *sdk.CallToolRequest, args ScanInput) (_ *sdk.CallToolResult, _ ScanOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("simcheck_scan", start, retErr, map[string]any{
			"file": args.File, "dir": args.Dir, "symmetric": args.Symmetric, "limit": args.Limit,
		})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "simcheck_scan"); err != nil {
		return nil, ScanOutput{}, err
	}

	file, err := s.resolvePath(args.File)
	if err != nil {
		return nil, ScanOutput{}, fmt.Errorf("file: %w", err)
	}
	dir, err := s.resolvePath(args.Dir)
	if err != nil {
		return nil, ScanOutput{}, fmt.Errorf("dir: %w", err)
	}

	symmetric := args.Symmetric || s.settings.Scoring.Symmetric
	results, err := s.comparator.CompareDir(ctx, file, dir, symmetric)
	if err != nil {
		return nil, ScanOutput{}, fmt.Errorf("scan failed: %w", err)
	}

	out := ScanOutput{File: args.File, Results: make([]ScanEntry, 0, len(results))}
	for _, r := range results {
		if r.Err != nil {
			out.Failed++
		}
		if args.Limit > 0 && len(out.Results) >= args.Limit {
			continue
		}
		entry := ScanEntry{File: s.relative(r.File), Percent: r.Percent}
		if r.Err != nil {
			entry.Error = r.Err.Error()
		}
		out.Results = append(out.Results, entry)
	}
	out.Count = len(out.Results)

	return nil, out, nil
}

func (s *Server) handleCanonicalize(ctx context.Context, req *sdk.CallToolRequest, args CanonicalizeInput) (_ *sdk.CallToolResult, _ CanonicalizeOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("simcheck_canonicalize", start, retErr, map[string]any{"file": args.File})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "simcheck_canonicalize"); err != nil {
		return nil, CanonicalizeOutput{}, err
	}

	path, err := s.resolvePath(args.File)
	if err != nil {
		return nil, CanonicalizeOutput{}, fmt.Errorf("file: %w", err)
	}

	doc, err := s.comparator.Load(ctx, path)
	if err != nil {
		return nil, CanonicalizeOutput{}, fmt.Errorf("canonicalization failed: %w", err)
	}

	return nil, CanonicalizeOutput{
		File:          args.File,
		Text:          doc.Text,
		Identifiers:   doc.Identifiers,
		Canonicalized: doc.Canonicalized,
		Cached:        doc.Cached,
	}, nil
}

func (s *Server) handleHistory(ctx context.Context, req *sdk.CallToolRequest, args HistoryInput) (_ *sdk.CallToolResult, _ HistoryOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("simcheck_history", start, retErr, map[string]any{"limit": args.Limit})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "simcheck_history"); err != nil {
		return nil, HistoryOutput{}, err
	}

	limit := args.Limit
	if limit <= 0 {
		limit = constants.DefaultHistoryLimit
	}

	records, err := s.store.ListComparisons(ctx, limit)
	if err != nil {
		return nil, HistoryOutput{}, fmt.Errorf("failed to list comparisons: %w", err)
	}

	items := make([]HistoryItem, 0, len(records))
	for _, r := range records {
		items = append(items, HistoryItem{
			ID:         r.ID,
			RunID:      r.RunID,
			FileA:      s.relative(r.FileA),
			FileB:      s.relative(r.FileB),
			Mode:       constants.ModeFor(r.Symmetric).String(),
			Percent:    r.Percent,
			Degenerate: r.Degenerate,
			Error:      r.Error,
			CreatedAt:  r.CreatedAt,
		})
	}

	return nil, HistoryOutput{Comparisons: items, Count: len(items)}, nil
}
