package hdl

// An Expr is a value expression over signals. The set of forms is closed.
// Evaluation against simulation state lives outside this package.
type Expr interface {
	isExpr()
}

// Const is a literal value.
type Const struct {
	Value uint64
}

// Ref reads or, on the left-hand side of an assignment, targets a signal.
// Ref is the only assignable expression form.
type Ref struct {
	Signal *Signal
}

// UnaryOp selects the operation of a Unary expression.
type UnaryOp int

// The unary operations.
const (
	OpNot UnaryOp = iota
	OpNeg
)

// Unary applies an operation to a single operand.
type Unary struct {
	Op UnaryOp
	X  Expr
}

// BinaryOp selects the operation of a Binary expression.
type BinaryOp int

// The binary operations. Arithmetic is 64-bit modular; comparison yields 0
// or 1.
const (
	OpAdd BinaryOp = iota
	OpSub
	OpAnd
	OpOr
	OpXor
	OpEq
)

// Binary combines two operands with an operation.
type Binary struct {
	Op   BinaryOp
	X, Y Expr
}

func (Const) isExpr()  {}
func (Ref) isExpr()    {}
func (Unary) isExpr()  {}
func (Binary) isExpr() {}
