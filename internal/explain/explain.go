// Package explain renders the explainability images of trained models into
// the artifact directory.
package explain

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"deskinsight/internal/model"
)

const (
	RegressionFile = "regression.png"
	TreeFile       = "tree.png"
)

// ForestFile names the image of the i-th (1-based) forest member.
func ForestFile(i int) string {
	return fmt.Sprintf("random_forest%d.png", i)
}

// Exporter writes fixed-name PNG artifacts. Writes for one model kind are
// serialized and every file is replaced atomically, so readers never see a
// partial image.
type Exporter struct {
	dir    string
	logger *zap.Logger
	locks  map[model.Kind]*sync.Mutex
}

func New(dir string, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	locks := make(map[model.Kind]*sync.Mutex, len(model.Kinds))
	for _, k := range model.Kinds {
		locks[k] = &sync.Mutex{}
	}
	return &Exporter{dir: dir, logger: logger, locks: locks}
}

func (e *Exporter) ExportRegression(ctx context.Context, actual []int, predicted []float64, threshold float64) ([]string, error) {
	p, err := regressionPlot(actual, predicted, threshold)
	if err != nil {
		return nil, err
	}
	data, err := render(p, 8*vg.Inch, 6*vg.Inch)
	if err != nil {
		return nil, err
	}

	unlock := e.lock(model.KindRegression)
	defer unlock()
	if err := e.write(ctx, RegressionFile, data); err != nil {
		return nil, err
	}
	return []string{RegressionFile}, nil
}

func (e *Exporter) ExportTree(ctx context.Context, tree *model.Tree) ([]string, error) {
	data, err := renderTree(tree, "Decision tree")
	if err != nil {
		return nil, err
	}

	unlock := e.lock(model.KindTree)
	defer unlock()
	if err := e.write(ctx, TreeFile, data); err != nil {
		return nil, err
	}
	return []string{TreeFile}, nil
}

// ExportForest writes one image per member tree and returns the names in
// member order.
func (e *Exporter) ExportForest(ctx context.Context, forest *model.Forest) ([]string, error) {
	images := make([][]byte, len(forest.Trees))
	for i, t := range forest.Trees {
		data, err := renderTree(t, fmt.Sprintf("Random forest estimator %d", i+1))
		if err != nil {
			return nil, err
		}
		images[i] = data
	}

	unlock := e.lock(model.KindForest)
	defer unlock()
	names := make([]string, 0, len(images))
	for i, data := range images {
		name := ForestFile(i + 1)
		if err := e.write(ctx, name, data); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func (e *Exporter) lock(kind model.Kind) func() {
	mu := e.locks[kind]
	mu.Lock()
	return mu.Unlock
}

// write replaces dir/name with data through a temp file and rename.
func (e *Exporter) write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(e.dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	dst := filepath.Join(e.dir, name)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return err
	}
	e.logger.Debug("wrote artifact", zap.String("path", dst), zap.Int("bytes", len(data)))
	return nil
}

func render(p *plot.Plot, width, height vg.Length) ([]byte, error) {
	w, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
