package syntax

import (
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/ComedicChimera/ratesfmt/common"
)

// StartName is the start production of every product grammar
const StartName = "start"

// scope is one instance of a grammar file inside the grammar being built.
// The same file imported along two different paths gets two scopes, and
// hence two sets of qualified names.
type scope struct {
	src *sourceGrammar
	ns  string

	// root scopes are the product files themselves: names they declare or
	// import are not qualified any further
	root bool

	// importers maps names this scope exports to the scope that imported
	// them
	importers map[string]*scope

	// imported maps names this scope imports to the scope defining them
	imported map[string]*scope

	// aliases rename local names outright (used for product start rules)
	aliases map[string]string
}

// final returns the name a local symbol has in the built grammar.  A name
// explicitly imported all the way up into a root scope takes the name the
// root gives it; any other name is qualified by the scope declaring it.
func (s *scope) final(local string) string {
	top := s
	for {
		importer, ok := top.importers[local]
		if !ok {
			break
		}

		top = importer
	}

	if top.root {
		if alias, ok := top.aliases[local]; ok {
			return alias
		}

		return common.Qualify(top.ns, local)
	}

	return common.Qualify(s.ns, local)
}

// builder assembles a Grammar out of grammar files
type builder struct {
	fsys    fs.FS
	sources map[string]*sourceGrammar
	scopes  map[string]*scope

	grammar  *Grammar
	defined  map[string]bool
	patterns map[string]string
	pending  map[string]bool
	queue    []queuedProduction

	// importing is the chain of files whose imports are being read
	importing []string
}

type queuedProduction struct {
	s     *scope
	local string
}

func newBuilder(fsys fs.FS, name string) *builder {
	return &builder{
		fsys:     fsys,
		sources:  make(map[string]*sourceGrammar),
		scopes:   make(map[string]*scope),
		grammar:  &Grammar{Name: name, Terminals: make(map[string]*TerminalDef), Start: StartName},
		defined:  make(map[string]bool),
		patterns: make(map[string]string),
		pending:  make(map[string]bool),
	}
}

// LoadProduct loads the standalone grammar of one product: its own names are
// bare and its start symbol is `start`
func LoadProduct(fsys fs.FS, assetClass, productType string) (*Grammar, error) {
	file := common.Qualify(assetClass, productType)

	b := newBuilder(fsys, file)
	s, err := b.scope(file, "", true, nil)
	if err != nil {
		return nil, err
	}

	if err := b.require(s, StartName); err != nil {
		return nil, err
	}

	if err := b.drain(); err != nil {
		return nil, err
	}

	return b.grammar, nil
}

// LoadAssetClass builds the combined grammar of an asset class: `start` is
// the alternation of every product grammar of the class, each renamed to its
// product type.  Product-local names are qualified by their file name.
func LoadAssetClass(fsys fs.FS, assetClass string) (*Grammar, error) {
	products, err := ProductTypes(fsys, assetClass)
	if err != nil {
		return nil, err
	}

	if len(products) == 0 {
		return nil, fmt.Errorf("no grammars found for asset class `%s`", assetClass)
	}

	b := newBuilder(fsys, assetClass)
	for i, product := range products {
		b.grammar.Rules = append(b.grammar.Rules, &Rule{
			Origin:    NonTerm(StartName),
			Expansion: []Symbol{NonTerm(product)},
			Order:     i,
		})
	}
	b.defined[StartName] = true

	for _, product := range products {
		file := common.Qualify(assetClass, product)
		s, err := b.scope(file, file, true, map[string]string{StartName: product})
		if err != nil {
			return nil, err
		}

		if err := b.require(s, StartName); err != nil {
			return nil, err
		}
	}

	if err := b.drain(); err != nil {
		return nil, err
	}

	return b.grammar, nil
}

// ProductTypes lists the product types that have a grammar file for the given
// asset class, sorted by name
func ProductTypes(fsys fs.FS, assetClass string) ([]string, error) {
	matches, err := fs.Glob(fsys, assetClass+common.PathDelimiter+"*"+common.GrammarFileExtension)
	if err != nil {
		return nil, err
	}

	products := make([]string, 0, len(matches))
	for _, m := range matches {
		stem := strings.TrimSuffix(path.Base(m), common.GrammarFileExtension)
		products = append(products, strings.TrimPrefix(stem, assetClass+common.PathDelimiter))
	}

	sort.Strings(products)
	return products, nil
}

// source reads (and caches) one grammar file
func (b *builder) source(file string) (*sourceGrammar, error) {
	if src, ok := b.sources[file]; ok {
		return src, nil
	}

	f, err := b.fsys.Open(file + common.GrammarFileExtension)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, err := readGrammar(file, f)
	if err != nil {
		return nil, err
	}

	b.sources[file] = src
	return src, nil
}

// scope creates the scope of a file under a namespace along with the scopes
// of everything it imports
func (b *builder) scope(file, ns string, root bool, aliases map[string]string) (*scope, error) {
	key := file + "|" + ns
	if s, ok := b.scopes[key]; ok {
		return s, nil
	}

	for i, f := range b.importing {
		if f == file {
			cycle := append(append([]string(nil), b.importing[i:]...), file)
			return nil, fmt.Errorf("grammar `%s`: import cycle %s", file, strings.Join(cycle, " -> "))
		}
	}

	src, err := b.source(file)
	if err != nil {
		return nil, err
	}

	b.importing = append(b.importing, file)
	defer func() { b.importing = b.importing[:len(b.importing)-1] }()

	s := &scope{
		src:       src,
		ns:        ns,
		root:      root,
		importers: make(map[string]*scope),
		imported:  make(map[string]*scope),
		aliases:   aliases,
	}
	b.scopes[key] = s

	for _, decl := range src.imports {
		child, err := b.scope(decl.file, common.Qualify(ns, decl.file), false, nil)
		if err != nil {
			return nil, err
		}

		for _, name := range decl.names {
			if _, ok := src.productions[name]; ok {
				return nil, fmt.Errorf("grammar `%s`: imported name `%s` is also defined locally (line %d)", file, name, decl.line)
			}

			s.imported[name] = child
			child.importers[name] = s
		}
	}

	return s, nil
}

// lookup resolves a reference made inside a scope to the scope defining it
func (b *builder) lookup(s *scope, ref string) (*scope, error) {
	if _, ok := s.src.productions[ref]; ok {
		return s, nil
	}

	if child, ok := s.imported[ref]; ok {
		return b.lookup(child, ref)
	}

	return nil, fmt.Errorf("grammar `%s`: undefined name `%s`", s.src.name, ref)
}

// require queues the production `local` of scope s for definition
func (b *builder) require(s *scope, local string) error {
	def, err := b.lookup(s, local)
	if err != nil {
		return err
	}

	final := def.final(local)
	if b.defined[final] || b.pending[final] {
		return nil
	}

	b.pending[final] = true
	b.queue = append(b.queue, queuedProduction{s: def, local: local})
	return nil
}

// drain defines every queued production, queueing what they reference
func (b *builder) drain() error {
	for len(b.queue) > 0 {
		qp := b.queue[0]
		b.queue = b.queue[1:]

		if isTerminalName(qp.local) {
			if _, err := b.terminal(qp.s, qp.local); err != nil {
				return err
			}

			continue
		}

		if err := b.rules(qp.s, qp.local); err != nil {
			return err
		}
	}

	return nil
}

// rules defines the rules of a nonterminal production
func (b *builder) rules(s *scope, local string) error {
	prod := s.src.productions[local]
	final := s.final(local)
	b.defined[final] = true

	for order, alt := range expandAlternatives(prod.body) {
		expansion := make([]Symbol, 0, len(alt))

		for _, item := range alt {
			switch v := item.(type) {
			case Literal:
				name := literalTerminalName(string(v))
				if _, ok := b.grammar.Terminals[name]; !ok {
					td, err := newTerminalDef(name, regexp.QuoteMeta(string(v)), string(v), true)
					if err != nil {
						return err
					}

					b.grammar.Terminals[name] = td
				}

				expansion = append(expansion, Term(name))
			case Regex:
				return fmt.Errorf("grammar `%s`: pattern in rule `%s` must be declared as a terminal (line %d)", s.src.name, local, prod.line)
			case Name:
				def, err := b.lookup(s, string(v))
				if err != nil {
					return err
				}

				if err := b.require(s, string(v)); err != nil {
					return err
				}

				expansion = append(expansion, Symbol{Name: def.final(string(v)), Terminal: isTerminalName(string(v))})
			}
		}

		b.grammar.Rules = append(b.grammar.Rules, &Rule{
			Origin:    NonTerm(final),
			Expansion: expansion,
			Order:     order,
			Options: RuleOptions{
				Inline:            strings.HasPrefix(final, "_"),
				ExpandSingleChild: prod.expandSingle,
			},
		})
	}

	return nil
}

// terminal compiles (and memoizes) the pattern of a terminal production
func (b *builder) terminal(s *scope, local string) (string, error) {
	final := s.final(local)
	if pattern, ok := b.patterns[final]; ok {
		return pattern, nil
	}

	if b.defined[final] {
		return "", fmt.Errorf("grammar `%s`: terminal `%s` refers to itself", s.src.name, local)
	}
	b.defined[final] = true

	prod := s.src.productions[local]
	pattern, err := terminalPattern(prod.body, func(ref string) (string, error) {
		if !isTerminalName(ref) {
			return "", fmt.Errorf("grammar `%s`: terminal `%s` refers to rule `%s`", s.src.name, local, ref)
		}

		def, err := b.lookup(s, ref)
		if err != nil {
			return "", err
		}

		return b.terminal(def, ref)
	})
	if err != nil {
		return "", err
	}

	lit, _ := plainLiteral(prod.body)
	td, err := newTerminalDef(final, pattern, lit, strings.HasPrefix(local, "_"))
	if err != nil {
		return "", fmt.Errorf("grammar `%s`: terminal `%s`: %w", s.src.name, local, err)
	}

	b.patterns[final] = pattern
	b.grammar.Terminals[final] = td
	return pattern, nil
}
