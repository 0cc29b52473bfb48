package mono

import (
	"kestrel/internal/hir"
	"kestrel/internal/symbols"
)

// Listing is a printable summary of a Program.
type Listing struct {
	Entry     string        `yaml:"entry"`
	Functions []FuncListing `yaml:"functions"`
	Types     []string      `yaml:"types"`
	Globals   []string      `yaml:"globals,omitempty"`
}

type FuncListing struct {
	Name     string   `yaml:"name"`
	Template string   `yaml:"template"`
	Type     string   `yaml:"type"`
	Wrapper  bool     `yaml:"wrapper,omitempty"`
	Calls    []string `yaml:"calls,omitempty"`
}

// Listing renders p with types formatted by tab.
func (p *Program) Listing(tab *symbols.Table) Listing {
	in := tab.Types
	l := Listing{}
	if p.Entry != nil {
		l.Entry = p.Entry.Name
	}
	for _, inst := range p.Funcs {
		fl := FuncListing{
			Name:     inst.Name,
			Template: tab.FormatFn(inst.Key.Fn),
			Type:     in.Format(inst.Key.Type),
			Wrapper:  inst.Wrapper,
		}
		if inst.Func != nil {
			seen := make(map[string]bool)
			hir.WalkBlock(inst.Func.Body, nil, func(e *hir.Expr) {
				var target string
				switch d := e.Data.(type) {
				case hir.CallData:
					target = d.Instance
				case hir.FnRefData:
					target = d.Instance
				}
				if target != "" && !seen[target] {
					seen[target] = true
					fl.Calls = append(fl.Calls, target)
				}
			})
		}
		l.Functions = append(l.Functions, fl)
	}
	for _, t := range p.Types {
		l.Types = append(l.Types, in.Format(t))
	}
	for _, g := range p.Globals {
		l.Globals = append(l.Globals, g.Name+": "+in.Format(g.Type))
	}
	return l
}
