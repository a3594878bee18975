package experience

import (
	"context"
	"fmt"

	"github.com/XiaoConstantine/swexp-go/pkg/core"
	"github.com/XiaoConstantine/swexp-go/pkg/errors"
)

// Predict is the single LLM-call module behind extraction, selection and
// generalization: format the signature prompt, run the completion model,
// parse the prefixed completion back into output fields. Each component owns
// one Predict per signature.
type Predict struct {
	core.BaseModule
	defaults *core.ModuleOptions
}

var _ core.Module = (*Predict)(nil)

// NewPredict creates a Predict over a signature and completion LLM. The
// defaults are applied to every Process call and merged with per-call options.
func NewPredict(signature core.Signature, llm core.LLM, defaults ...core.Option) *Predict {
	base := core.NewModule(signature)
	base.SetLLM(llm)

	p := &Predict{
		BaseModule: *base,
		defaults:   &core.ModuleOptions{},
	}
	for _, opt := range defaults {
		opt(p.defaults)
	}
	return p
}

// Process implements core.Module. Output fields the completion never produced
// come back nil, so callers can treat absence and emptiness alike.
func (p *Predict) Process(ctx context.Context, inputs map[string]any, opts ...core.Option) (map[string]any, error) {
	if err := p.ValidateInputs(inputs); err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "prediction inputs incomplete")
	}

	callOpts := &core.ModuleOptions{}
	for _, opt := range opts {
		opt(callOpts)
	}
	merged := p.defaults.MergeWith(callOpts)

	values := make(map[string]string, len(inputs))
	for name, v := range inputs {
		values[name] = fmt.Sprint(v)
	}

	resp, err := p.LLM.Generate(ctx, formatPrompt(p.Signature, values), merged.GenerateOptions...)
	if err != nil {
		return nil, err
	}

	parsed := parseCompletion(resp.Content, p.Signature)
	outputs := make(map[string]any, len(parsed))
	for name, v := range parsed {
		outputs[name] = v
	}
	return p.FormatOutputs(outputs), nil
}

// Clone implements core.Module.
func (p *Predict) Clone() core.Module {
	return &Predict{
		BaseModule: *p.BaseModule.Clone().(*core.BaseModule),
		defaults:   p.defaults.Clone(),
	}
}

// outputString reads a parsed output field, treating absent fields as empty.
func outputString(outputs map[string]any, name string) string {
	s, _ := outputs[name].(string)
	return s
}
