package refactor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mamaar/jsxsplit/pkg/analysis"
	"github.com/mamaar/jsxsplit/pkg/types"
)

// RefactorEngine is the main interface for component extraction
type RefactorEngine interface {
	// ExtractComponent moves the editor's selection into a new component
	// file and replaces it with a reference to that component.
	ExtractComponent(ctx context.Context, req ExtractRequest) (*types.RefactoringPlan, error)

	// AnalyzeSelection reports what an extraction would produce without
	// touching the editor or the file system.
	AnalyzeSelection(ctx context.Context, editor Editor, name string) (*SelectionAnalysis, error)
}

// ExtractRequest describes one extraction
type ExtractRequest struct {
	Editor Editor
	// Name of the new component. When empty the Prompter is asked.
	Name     string
	Prompter Prompter
	// DryRun computes the plan against a copy of the document; nothing is
	// applied to the editor and no file is written.
	DryRun bool
}

// SelectionAnalysis is the result of AnalyzeSelection
type SelectionAnalysis struct {
	Range     types.Range         `json:"range"`
	Wrapped   bool                `json:"wrapped"`
	Props     []string            `json:"props"`
	Imports   []types.ImportEntry `json:"imports"`
	Reference string              `json:"reference"`
	Unit      string              `json:"unit"`
	Issues    []types.Issue       `json:"issues,omitempty"`
}

// DefaultEngine implements the RefactorEngine interface
type DefaultEngine struct {
	oracle      Oracle
	validator   *Validator
	partitioner *Partitioner
	generator   *Generator
	reconciler  *Reconciler
	serializer  *Serializer
	config      *EngineConfig
	logger      *slog.Logger
}

// EngineConfig contains configuration options for the refactoring engine
type EngineConfig struct {
	// FrameworkName is the default binding every generated unit imports
	// from FrameworkModule.
	FrameworkName   string
	FrameworkModule string
	IndentUnit      string
	// ParamInlineMax is the largest prop count rendered on one line in the
	// component's parameter list; ReferenceInlineMax is the same for the
	// attributes of the replacing element.
	ParamInlineMax     int
	ReferenceInlineMax int
	CreateBackups      bool
	// WorkspaceRoot must be set for an extraction to write anything
	WorkspaceRoot string
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() *EngineConfig {
	return &EngineConfig{
		FrameworkName:      "React",
		FrameworkModule:    "react",
		IndentUnit:         "  ",
		ParamInlineMax:     2,
		ReferenceInlineMax: 3,
		CreateBackups:      false,
	}
}

func CreateEngine(oracle Oracle, fs FileSystem, logger *slog.Logger) RefactorEngine {
	return CreateEngineWithConfig(oracle, fs, DefaultConfig(), logger)
}

func CreateEngineWithConfig(oracle Oracle, fs FileSystem, config *EngineConfig, logger *slog.Logger) RefactorEngine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if config == nil {
		config = DefaultConfig()
	}
	return &DefaultEngine{
		oracle:      oracle,
		validator:   NewValidator(oracle, logger),
		partitioner: NewPartitioner(oracle, logger),
		generator:   NewGenerator(oracle, config),
		reconciler:  NewReconciler(oracle, logger),
		serializer:  NewSerializer(fs, logger),
		config:      config,
		logger:      logger,
	}
}

// selection is a validated fragment together with the document it came from
type selection struct {
	path     string
	document string
	valid    *ValidatedSelection
	indent   IndentContext
}

func (e *DefaultEngine) readSelection(ctx context.Context, editor Editor) (*selection, error) {
	document, err := editor.Text(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	rng, err := editor.Selection(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read selection: %w", err)
	}
	if rng.IsEmpty() {
		return nil, types.NewError(types.EmptySelection, "nothing is selected")
	}
	text, err := TextInRange(document, rng)
	if err != nil {
		return nil, types.WrapError(types.InvalidSelection, err, "selection does not fit the document")
	}

	valid, err := e.validator.Validate(ctx, types.Fragment{Text: text, Range: rng}, document)
	if err != nil {
		return nil, withFile(err, editor.Path())
	}

	lineStart, err := Offset(document, types.Position{Line: rng.Start.Line})
	if err != nil {
		return nil, types.WrapError(types.InvalidSelection, err, "selection does not fit the document")
	}
	start, err := Offset(document, rng.Start)
	if err != nil {
		return nil, types.WrapError(types.InvalidSelection, err, "selection does not fit the document")
	}

	return &selection{
		path:     editor.Path(),
		document: document,
		valid:    valid,
		indent:   NewIndentContext(text, document[lineStart:start]),
	}, nil
}

// buildUnit partitions the fragment's free identifiers and renders both the
// new component and the element that replaces the selection.
func (e *DefaultEngine) buildUnit(ctx context.Context, sel *selection, name string) (*types.NewUnit, error) {
	spec := UnitSpec{
		Name:   name,
		Markup: sel.valid.Trimmed,
		Wrap:   sel.valid.Wrapped,
		Indent: sel.indent,
	}
	skeleton, err := e.generator.RenderUnit(ctx, spec)
	if err != nil {
		return nil, analysisFailure(err, "could not render the component")
	}
	classification, err := e.partitioner.Partition(ctx, skeleton, sel.document)
	if err != nil {
		return nil, err
	}

	spec.Props = classification.Props()
	spec.Imports = classification.Imports()
	source, err := e.generator.RenderUnit(ctx, spec)
	if err != nil {
		return nil, analysisFailure(err, "could not render the component")
	}

	return &types.NewUnit{
		Name:      name,
		Path:      ComponentPath(sel.path, name),
		Source:    source,
		Imports:   spec.Imports,
		Props:     spec.Props,
		Reference: e.generator.RenderReference(name, spec.Props, sel.indent),
	}, nil
}

// ExtractComponent runs the whole extraction. Steps run in order and the
// first failure stops the operation; edits already applied are not undone.
func (e *DefaultEngine) ExtractComponent(ctx context.Context, req ExtractRequest) (*types.RefactoringPlan, error) {
	if req.Editor == nil {
		return nil, types.NewError(types.InvalidOperation, "no editor given")
	}
	editor := req.Editor

	sel, err := e.readSelection(ctx, editor)
	if err != nil {
		return nil, err
	}
	if e.config.WorkspaceRoot == "" {
		return nil, types.NewError(types.NoWorkspace, "no workspace is open; the component file cannot be created")
	}

	name, err := e.resolveName(ctx, req)
	if err != nil {
		return nil, err
	}
	unitPath := ComponentPath(sel.path, name)
	exists, err := e.serializer.fs.Exists(unitPath)
	if err != nil {
		return nil, types.WrapError(types.FileWriteFailure, err, "could not check "+unitPath)
	}
	if exists {
		return nil, &types.RefactorError{
			Type:    types.NameCollision,
			Message: fmt.Sprintf("a file named %s already exists", unitPath),
			File:    unitPath,
		}
	}

	preserve, err := e.unusedImports(ctx, sel.document)
	if err != nil {
		return nil, err
	}

	unit, err := e.buildUnit(ctx, sel, name)
	if err != nil {
		return nil, err
	}
	e.logger.Info("extracting component",
		"file", sel.path, "name", name, "props", len(unit.Props), "imports", len(unit.Imports), "dry_run", req.DryRun)

	if e.config.CreateBackups && !req.DryRun {
		if _, err := e.serializer.BackupFile(sel.path); err != nil {
			return nil, types.WrapError(types.FileWriteFailure, err, "could not back up "+sel.path)
		}
	}

	plan := &types.RefactoringPlan{
		ID:             uuid.NewString(),
		SourceFile:     sel.path,
		Unit:           unit,
		OriginalBefore: sel.document,
	}

	current := sel.document
	apply := func(edits ...types.TextEdit) error {
		if len(edits) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		plan.Edits = append(plan.Edits, edits...)
		if req.DryRun {
			text, err := ApplyEdits(current, edits)
			if err != nil {
				return types.WrapError(types.InternalAnalysisFailure, err, "edit does not fit the document")
			}
			current = text
			return nil
		}
		if err := editor.ApplyEdits(ctx, edits); err != nil {
			return types.WrapError(types.InvalidOperation, err, "editor rejected the edits")
		}
		text, err := editor.Text(ctx)
		if err != nil {
			return fmt.Errorf("failed to read document: %w", err)
		}
		current = text
		return nil
	}

	if err := apply(types.TextEdit{
		Range:       sel.valid.Fragment.Range,
		NewText:     unit.Reference,
		Description: fmt.Sprintf("replace selection with <%s/>", name),
	}); err != nil {
		return nil, err
	}
	if err := apply(insertLineEdit(current, ImportInsertionLine(current), ImportLine(name))); err != nil {
		return nil, err
	}

	rec, err := e.reconciler.Reconcile(ctx, current, preserve, unit.Imports)
	if err != nil {
		return nil, err
	}
	if err := apply(rec.Edits...); err != nil {
		return nil, err
	}

	if len(rec.Missing) > 0 {
		source, err := e.generator.MergeImports(ctx, unit.Source, rec.Missing)
		if err != nil {
			return nil, analysisFailure(err, "could not add relocated imports")
		}
		unit.Source = source
		unit.Imports = append(unit.Imports, rec.Missing...)
		plan.MissingImports = rec.Missing
	}

	if !req.DryRun {
		if err := e.serializer.WriteUnit(unit); err != nil {
			return nil, err
		}
		plan.Applied = true
	}

	plan.OriginalAfter = current
	plan.AffectedFiles = []string{sel.path, unit.Path}
	plan.Diff, err = e.planDiff(plan)
	if err != nil {
		return nil, fmt.Errorf("failed to render diff: %w", err)
	}
	return plan, nil
}

func (e *DefaultEngine) resolveName(ctx context.Context, req ExtractRequest) (string, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		if req.Prompter == nil {
			return "", types.NewError(types.InvalidName, "no component name given")
		}
		value, ok, err := req.Prompter.Prompt(ctx, PromptOptions{
			Title:       "Name of the new component",
			Placeholder: "NewComponent",
		})
		if err != nil {
			return "", fmt.Errorf("failed to prompt for a name: %w", err)
		}
		if !ok {
			return "", types.NewError(types.InvalidName, "extraction cancelled: no component name given")
		}
		name = strings.TrimSpace(value)
	}
	if err := ValidateComponentName(name); err != nil {
		return "", err
	}
	return name, nil
}

// unusedImports returns the import bindings that are unused before anything
// is changed. The reconciler leaves those alone.
func (e *DefaultEngine) unusedImports(ctx context.Context, document string) (map[string]bool, error) {
	diags, err := e.oracle.FindUnusedImportBindings(ctx, document)
	if err != nil {
		return nil, analysisFailure(err, "could not analyse imports of the document")
	}
	preserve := make(map[string]bool, len(diags))
	for _, d := range diags {
		preserve[d.Name] = true
	}
	return preserve, nil
}

func (e *DefaultEngine) planDiff(plan *types.RefactoringPlan) (string, error) {
	origin, err := GenerateDiff(plan.SourceFile, plan.OriginalBefore, plan.OriginalAfter)
	if err != nil {
		return "", err
	}
	unit, err := GenerateDiff(plan.Unit.Path, "", plan.Unit.Source)
	if err != nil {
		return "", err
	}
	return origin + unit, nil
}

// AnalyzeSelection validates the selection and renders the would-be
// component. name falls back to a placeholder when empty.
func (e *DefaultEngine) AnalyzeSelection(ctx context.Context, editor Editor, name string) (*SelectionAnalysis, error) {
	sel, err := e.readSelection(ctx, editor)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = "NewComponent"
	}
	if err := ValidateComponentName(name); err != nil {
		return nil, err
	}
	unit, err := e.buildUnit(ctx, sel, name)
	if err != nil {
		return nil, err
	}

	result := &SelectionAnalysis{
		Range:     sel.valid.Fragment.Range,
		Wrapped:   sel.valid.Wrapped,
		Props:     unit.Props,
		Imports:   unit.Imports,
		Reference: unit.Reference,
		Unit:      unit.Source,
	}
	for _, p := range unit.Props {
		result.Issues = append(result.Issues, types.Issue{
			Type:        types.IssueFreeIdentifier,
			Description: fmt.Sprintf("'%s' is not defined in the selection and becomes a prop", p),
			File:        sel.path,
			Line:        sel.valid.Fragment.Range.Start.Line + 1,
			Severity:    types.Info,
		})
	}

	diags, err := e.oracle.FindUnusedImportBindings(ctx, sel.document)
	if err != nil {
		return nil, analysisFailure(err, "could not analyse imports of the document")
	}
	for _, d := range diags {
		result.Issues = append(result.Issues, types.Issue{
			Type:        types.IssueUnusedImport,
			Description: d.Message,
			File:        sel.path,
			Line:        d.Line,
			Severity:    types.Warning,
		})
	}
	return result, nil
}

// insertLineEdit inserts text as a new line before line. A line past the end
// of the document appends it instead. Inserted above a non-blank first line,
// it is followed by an empty line.
func insertLineEdit(document string, line int, text string) types.TextEdit {
	edit := types.TextEdit{NewText: text, Description: "import the new component"}
	lines := strings.Split(document, "\n")
	if line < len(lines) {
		if line == 0 && strings.TrimSpace(lines[0]) != "" {
			// first import of the file; keep it apart from the code below
			edit.NewText += "\n"
		}
		edit.Range = types.Range{Start: types.Position{Line: line}, End: types.Position{Line: line}}
		return edit
	}
	end := PositionAt(document, len(document))
	edit.Range = types.Range{Start: end, End: end}
	if !strings.HasSuffix(document, "\n") {
		edit.NewText = "\n" + strings.TrimSuffix(text, "\n")
	}
	return edit
}

// analysisFailure tags oracle errors that are not cancellations
func analysisFailure(err error, message string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var refErr *types.RefactorError
	if errors.As(err, &refErr) {
		return err
	}
	var syntaxErr *analysis.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &types.RefactorError{
			Type:    types.InternalAnalysisFailure,
			Message: fmt.Sprintf("%s: %s", message, syntaxErr.Message),
			Line:    syntaxErr.Line,
			Column:  syntaxErr.Column,
			Cause:   err,
		}
	}
	return types.WrapError(types.InternalAnalysisFailure, err, message)
}

// withFile attaches path to a RefactorError that does not name a file yet
func withFile(err error, path string) error {
	var refErr *types.RefactorError
	if errors.As(err, &refErr) && refErr.File == "" {
		refErr.File = path
	}
	return err
}
