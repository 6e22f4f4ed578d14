package cleaner

import (
	"fmt"
	"strings"
)

// ChainCleaner runs cleaners as a pipeline; each stage sees the output of
// the one before it.
type ChainCleaner struct {
	stages []Cleaner
}

// NewChain creates a pipeline of stages, applied in the order given.
//
//	c := cleaner.NewChain(
//	    cleaner.NewBase64Scrubber(cleaner.DefaultBase64Placeholder),
//	    cleaner.NewBlankLineCollapser(),
//	)
func NewChain(stages ...Cleaner) *ChainCleaner {
	return &ChainCleaner{stages: stages}
}

// Clean runs content through every stage. The first failing stage stops the
// pipeline and is named in the error.
func (c *ChainCleaner) Clean(content string) (string, error) {
	for _, stage := range c.stages {
		out, err := stage.Clean(content)
		if err != nil {
			return "", fmt.Errorf("%s: %w", stage.Name(), err)
		}
		content = out
	}
	return content, nil
}

// Name describes the pipeline, e.g. "chain(base64->blank-lines)".
func (c *ChainCleaner) Name() string {
	var sb strings.Builder
	sb.WriteString("chain(")
	for i, stage := range c.stages {
		if i > 0 {
			sb.WriteString("->")
		}
		sb.WriteString(stage.Name())
	}
	sb.WriteByte(')')
	return sb.String()
}
