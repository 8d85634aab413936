package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chewxy/math32"

	"github.com/df07/go-procedural-raymarcher/pkg/core"
	"github.com/df07/go-procedural-raymarcher/pkg/scene"
)

// SceneExtension is the file extension of scene description files
const SceneExtension = ".scene"

// Statement is one parsed scene statement, e.g.
//
//	Shape "box" "vector3 size" [0.5 0.25 0.5]
type Statement struct {
	Type       string           // Shape, OperatorBegin, TransformBegin, ...
	Subtype    string           // sphere, smoothunion, twist, ...
	Parameters map[string]Param // Named parameters
	Line       int              // Line the statement starts on
}

// Param is a typed parameter with its raw values
type Param struct {
	Type   string   // float, vector3, point3, normal
	Values []string // Parameter values as strings
}

// block is an open OperatorBegin or TransformBegin awaiting its End
type block struct {
	stmt     *Statement
	children []scene.NodeIndex
}

// SceneParser builds a scene tree from scene description statements.
// Blocks close bottom-up, so every node is added after its children.
type SceneParser struct {
	builder        *scene.Builder
	stack          []*block
	roots          []scene.NodeIndex
	statementLines []string
	statementStart int
	line           int
}

// NewSceneParser creates a new parser instance
func NewSceneParser() *SceneParser {
	return &SceneParser{builder: scene.NewBuilder()}
}

// ParseScene parses a scene description from an io.Reader. Several top-level
// shapes or blocks are combined with a plain union.
func ParseScene(reader io.Reader) (*scene.Tree, error) {
	parser := NewSceneParser()

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		parser.line++
		if err := parser.processLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	return parser.finalize()
}

// LoadScene loads and parses a scene description file
func LoadScene(filename string) (*scene.Tree, error) {
	if err := validateFilePath(filename); err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	tree, err := ParseScene(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return tree, nil
}

// processLine processes a single line of input
func (p *SceneParser) processLine(line string) error {
	if i := strings.Index(line, "#"); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	switch line {
	case "OperatorEnd", "TransformEnd":
		if err := p.processAccumulatedStatement(); err != nil {
			return err
		}
		return p.closeBlock(line)
	}

	// Check if this line starts a new statement or continues the previous one
	if isStatementStart(line) {
		if err := p.processAccumulatedStatement(); err != nil {
			return err
		}
		p.statementLines = []string{line}
		p.statementStart = p.line
		return nil
	}
	if len(p.statementLines) == 0 {
		return fmt.Errorf("line %d: unexpected continuation line: %s", p.line, line)
	}
	p.statementLines = append(p.statementLines, line)
	return nil
}

func isStatementStart(line string) bool {
	for _, keyword := range []string{"Shape", "OperatorBegin", "TransformBegin"} {
		if strings.HasPrefix(line, keyword+" ") || strings.HasPrefix(line, keyword+"\t") {
			return true
		}
	}
	return false
}

// processAccumulatedStatement parses the pending statement lines and clears them
func (p *SceneParser) processAccumulatedStatement() error {
	if len(p.statementLines) == 0 {
		return nil
	}
	full := strings.Join(p.statementLines, " ")
	p.statementLines = nil

	stmt, err := parseStatement(full)
	if err != nil {
		return fmt.Errorf("line %d: error parsing statement '%s': %w", p.statementStart, full, err)
	}
	stmt.Line = p.statementStart

	switch stmt.Type {
	case "Shape":
		node, err := p.addShape(stmt)
		if err != nil {
			return fmt.Errorf("line %d: %w", stmt.Line, err)
		}
		p.attach(node)
	case "OperatorBegin", "TransformBegin":
		p.stack = append(p.stack, &block{stmt: stmt})
	}
	return nil
}

// attach hands a finished node to the innermost open block or the top level
func (p *SceneParser) attach(node scene.NodeIndex) {
	if len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		top.children = append(top.children, node)
		return
	}
	p.roots = append(p.roots, node)
}

// closeBlock pops the innermost block and adds its node
func (p *SceneParser) closeBlock(end string) error {
	if len(p.stack) == 0 {
		return fmt.Errorf("line %d: %s without a matching Begin", p.line, end)
	}
	top := p.stack[len(p.stack)-1]
	if want := strings.TrimSuffix(top.stmt.Type, "Begin") + "End"; want != end {
		return fmt.Errorf("line %d: %s closes %s opened on line %d", p.line, end, top.stmt.Type, top.stmt.Line)
	}
	p.stack = p.stack[:len(p.stack)-1]

	var node scene.NodeIndex
	var err error
	if top.stmt.Type == "OperatorBegin" {
		node, err = p.addOperator(top.stmt, top.children)
	} else {
		node, err = p.addTransform(top.stmt, top.children)
	}
	if err != nil {
		return fmt.Errorf("line %d: %w", top.stmt.Line, err)
	}
	p.attach(node)
	return nil
}

// finalize checks every block is closed and builds the tree
func (p *SceneParser) finalize() (*scene.Tree, error) {
	if err := p.processAccumulatedStatement(); err != nil {
		return nil, err
	}
	if len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		return nil, fmt.Errorf("%s on line %d is never closed", top.stmt.Type, top.stmt.Line)
	}

	var root scene.NodeIndex
	switch len(p.roots) {
	case 0:
		return nil, fmt.Errorf("scene has no shapes")
	case 1:
		root = p.roots[0]
	default:
		root = p.builder.Union(p.roots...)
	}
	return p.builder.Build(root)
}

func (p *SceneParser) addShape(stmt *Statement) (scene.NodeIndex, error) {
	b := p.builder
	switch stmt.Subtype {
	case "sphere":
		r, err := stmt.GetFloatParam("radius", 1)
		if err != nil {
			return 0, err
		}
		return b.Sphere(r), nil
	case "box":
		size, err := stmt.GetVec3Param("size", core.Splat3(0.5))
		if err != nil {
			return 0, err
		}
		return b.Box(size), nil
	case "cylinder":
		r, err := stmt.GetFloatParam("radius", 0.5)
		if err != nil {
			return 0, err
		}
		h, err := stmt.GetFloatParam("height", 1)
		if err != nil {
			return 0, err
		}
		return b.Cylinder(r, h), nil
	case "torus":
		major, err := stmt.GetFloatParam("major", 1)
		if err != nil {
			return 0, err
		}
		minor, err := stmt.GetFloatParam("minor", 0.25)
		if err != nil {
			return 0, err
		}
		return b.Torus(major, minor), nil
	case "capsule":
		a, err := stmt.GetVec3Param("a", core.NewVec3(0, -0.5, 0))
		if err != nil {
			return 0, err
		}
		c, err := stmt.GetVec3Param("b", core.NewVec3(0, 0.5, 0))
		if err != nil {
			return 0, err
		}
		r, err := stmt.GetFloatParam("radius", 0.25)
		if err != nil {
			return 0, err
		}
		return b.Capsule(a, c, r), nil
	case "plane":
		n, err := stmt.GetVec3Param("normal", core.NewVec3(0, 1, 0))
		if err != nil {
			return 0, err
		}
		if l := n.Length(); !(l > 0 && l <= math32.MaxFloat32) {
			return 0, fmt.Errorf("plane normal must be non-zero and finite")
		}
		offset, err := stmt.GetFloatParam("offset", 0)
		if err != nil {
			return 0, err
		}
		return b.Plane(n, offset), nil
	}
	return 0, fmt.Errorf("unknown shape %q", stmt.Subtype)
}

var operatorKinds = map[string]scene.OperatorKind{
	"union":           scene.OpUnion,
	"subtract":        scene.OpSubtract,
	"intersect":       scene.OpIntersect,
	"smoothunion":     scene.OpSmoothUnion,
	"smoothsubtract":  scene.OpSmoothSubtract,
	"smoothintersect": scene.OpSmoothIntersect,
}

func (p *SceneParser) addOperator(stmt *Statement, children []scene.NodeIndex) (scene.NodeIndex, error) {
	kind, ok := operatorKinds[stmt.Subtype]
	if !ok {
		return 0, fmt.Errorf("unknown operator %q", stmt.Subtype)
	}
	if len(children) == 0 {
		return 0, fmt.Errorf("operator %q has no children", stmt.Subtype)
	}
	k, err := stmt.GetFloatParam("k", 0.1)
	if err != nil {
		return 0, err
	}
	return p.builder.Operator(kind, k, children...), nil
}

func (p *SceneParser) addTransform(stmt *Statement, children []scene.NodeIndex) (scene.NodeIndex, error) {
	if len(children) != 1 {
		return 0, fmt.Errorf("transform %q needs exactly one child, got %d", stmt.Subtype, len(children))
	}
	b, child := p.builder, children[0]

	switch stmt.Subtype {
	case "twist":
		k, err := stmt.GetFloatParam("amount", 1)
		if err != nil {
			return 0, err
		}
		return b.Twist(k, child), nil
	case "round":
		r, err := stmt.GetFloatParam("radius", 0.05)
		if err != nil {
			return 0, err
		}
		return b.Round(r, child), nil
	case "repeat":
		cell, err := stmt.GetVec3Param("period", core.Splat3(2))
		if err != nil {
			return 0, err
		}
		return b.Repeat(cell, child), nil
	case "translate":
		offset, err := stmt.GetVec3Param("offset", core.Vec3{})
		if err != nil {
			return 0, err
		}
		return b.Translate(offset, child), nil
	}
	return 0, fmt.Errorf("unknown transform %q", stmt.Subtype)
}

// validateFilePath rejects paths that cannot name a scene file
func validateFilePath(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if strings.Contains(filename, "\x00") {
		return fmt.Errorf("invalid file path: null bytes not allowed")
	}

	cleanPath := filepath.Clean(filename)
	if len(cleanPath) > 512 {
		return fmt.Errorf("file path too long: maximum 512 characters allowed")
	}
	if !strings.EqualFold(filepath.Ext(cleanPath), SceneExtension) {
		return fmt.Errorf("invalid file type: only %s files are allowed", SceneExtension)
	}
	return nil
}

// tokenize splits a statement respecting quoted strings and brackets
func tokenize(line string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	inBrackets := false

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, char := range line {
		switch {
		case char == '"' && !inBrackets:
			current.WriteRune(char)
			if inQuotes {
				flush()
			}
			inQuotes = !inQuotes
		case char == '[' && !inQuotes:
			flush()
			current.WriteRune(char)
			inBrackets = true
		case char == ']' && !inQuotes && inBrackets:
			current.WriteRune(char)
			flush()
			inBrackets = false
		case (char == ' ' || char == '\t') && !inQuotes && !inBrackets:
			flush()
		default:
			current.WriteRune(char)
		}
	}
	flush()

	return tokens
}

// parseStatement parses: Type "subtype" "paramtype name" value-or-[values] ...
func parseStatement(line string) (*Statement, error) {
	parts := tokenize(line)
	if len(parts) < 2 || !isQuoted(parts[1]) {
		return nil, fmt.Errorf("expected a quoted subtype")
	}

	stmt := &Statement{
		Type:       parts[0],
		Subtype:    strings.ToLower(strings.Trim(parts[1], "\"")),
		Parameters: make(map[string]Param),
	}

	parts = parts[2:]
	for i := 0; i < len(parts); i++ {
		if !isQuoted(parts[i]) {
			return nil, fmt.Errorf("expected a quoted parameter declaration, got %s", parts[i])
		}
		decl := strings.Fields(strings.Trim(parts[i], "\""))
		if len(decl) != 2 {
			return nil, fmt.Errorf("parameter declaration %s must be \"type name\"", parts[i])
		}
		if i+1 >= len(parts) {
			return nil, fmt.Errorf("parameter %s has no value", decl[1])
		}
		i++

		var values []string
		if strings.HasPrefix(parts[i], "[") {
			values = strings.Fields(strings.Trim(parts[i], "[]"))
		} else {
			values = []string{parts[i]}
		}
		stmt.Parameters[decl[1]] = Param{Type: decl[0], Values: values}
	}

	return stmt, nil
}

func isQuoted(token string) bool {
	return len(token) >= 2 && strings.HasPrefix(token, "\"") && strings.HasSuffix(token, "\"")
}

// GetFloatParam returns the named float parameter, or def when it is absent
func (stmt *Statement) GetFloatParam(name string, def float32) (float32, error) {
	param, exists := stmt.Parameters[name]
	if !exists {
		return def, nil
	}
	if param.Type != "float" || len(param.Values) != 1 {
		return 0, fmt.Errorf("parameter %s must be a single float", name)
	}
	v, err := parseFinite(param.Values[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': %w", name, param.Values[0], err)
	}
	return v, nil
}

// GetVec3Param returns the named vector3, point3 or normal parameter, or def
// when it is absent
func (stmt *Statement) GetVec3Param(name string, def core.Vec3) (core.Vec3, error) {
	param, exists := stmt.Parameters[name]
	if !exists {
		return def, nil
	}
	switch param.Type {
	case "vector3", "point3", "normal":
	default:
		return core.Vec3{}, fmt.Errorf("parameter %s must be a vector3, point3 or normal", name)
	}
	if len(param.Values) != 3 {
		return core.Vec3{}, fmt.Errorf("parameter %s needs 3 values, got %d", name, len(param.Values))
	}

	var xyz [3]float32
	for i, s := range param.Values {
		v, err := parseFinite(s)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("invalid %s component '%s': %w", name, s, err)
		}
		xyz[i] = v
	}
	return core.NewVec3(xyz[0], xyz[1], xyz[2]), nil
}

// parseFinite parses a float32, rejecting NaN and infinities
func parseFinite(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, err
	}
	f := float32(v)
	if math32.IsNaN(f) || math32.IsInf(f, 0) {
		return 0, fmt.Errorf("value must be finite")
	}
	return f, nil
}
