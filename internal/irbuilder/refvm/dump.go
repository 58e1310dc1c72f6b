package refvm

import (
	"fmt"
	"strings"
)

// Dump renders modV as readable textual IR: one line per instruction,
// grouped by function and block, in the same flat-stream shape the
// interpreter itself walks. It is not meant to be re-parsed -- only read
// by a human running --dump-ir or a golden-file test.
func (vm *VM) Dump(modV any) string {
	mod := modV.(*module)
	var b strings.Builder
	fmt.Fprintf(&b, "module %q\n", mod.name)
	for _, g := range mod.globals {
		kind := "global"
		if g.constant {
			kind = "constant"
		}
		fmt.Fprintf(&b, "%s %s %s", kind, g.typ, g.name)
		if g.init != nil {
			fmt.Fprintf(&b, " = %s\n", dumpConst(g.init))
		} else {
			b.WriteString("\n")
		}
	}
	for _, fn := range mod.funcOrder {
		dumpFunction(&b, fn)
	}
	return b.String()
}

func dumpConst(v *val) string {
	switch v.kind {
	case kConstInt:
		return fmt.Sprintf("%d", v.iv)
	case kConstFloat:
		return fmt.Sprintf("%g", v.fv)
	default:
		return "<expr>"
	}
}

func dumpFunction(b *strings.Builder, fn *function) {
	params := make([]string, len(fn.paramTypes))
	for i, t := range fn.paramTypes {
		params[i] = fmt.Sprintf("%%p%d:%s", i, t)
	}
	fmt.Fprintf(b, "\nfunc %s(%s) %s {\n", fn.name, strings.Join(params, ", "), fn.retType)

	names := map[*instr]string{}
	for i, p := range fn.params {
		names[p] = fmt.Sprintf("%%p%d", i)
	}
	reg := 0
	nameOf := func(in *instr) string {
		if n, ok := names[in]; ok {
			return n
		}
		reg++
		names[in] = fmt.Sprintf("%%%d", reg)
		return names[in]
	}

	blockNames := map[*block]string{}
	for i, blk := range fn.blocks {
		blockNames[blk] = blockLabel(blk.name, i)
	}

	for _, blk := range fn.blocks {
		fmt.Fprintf(b, "%s:\n", blockNames[blk])
		for _, in := range blk.instrs {
			dumpInstr(b, in, nameOf, blockNames)
		}
	}
	b.WriteString("}\n")
}

func blockLabel(name string, idx int) string {
	if name == "" {
		return fmt.Sprintf("bb%d", idx)
	}
	return name
}

func dumpInstr(b *strings.Builder, in *instr, nameOf func(*instr) string, blockNames map[*block]string) {
	switch in.op {
	case opBr:
		fmt.Fprintf(b, "  br %s\n", blockNames[in.target])
		return
	case opCondBr:
		fmt.Fprintf(b, "  condbr %s, %s, %s\n", dumpArg(in.args[0], nameOf), blockNames[in.thenBlock], blockNames[in.elseBlock])
		return
	case opRet:
		fmt.Fprintf(b, "  ret %s\n", dumpArg(in.args[0], nameOf))
		return
	case opRetVoid:
		b.WriteString("  ret void\n")
		return
	case opParam:
		return
	}

	name := nameOf(in)
	switch in.op {
	case opAdd, opSub, opMul, opSDiv, opUDiv, opFAdd, opFSub, opFMul, opFDiv:
		fmt.Fprintf(b, "  %s = %s %s, %s\n", name, opName(in.op), dumpArg(in.args[0], nameOf), dumpArg(in.args[1], nameOf))
	case opICmp, opFCmp:
		fmt.Fprintf(b, "  %s = %s %s %s, %s\n", name, opName(in.op), in.pred, dumpArg(in.args[0], nameOf), dumpArg(in.args[1], nameOf))
	case opNot:
		fmt.Fprintf(b, "  %s = not %s\n", name, dumpArg(in.args[0], nameOf))
	case opAlloca:
		fmt.Fprintf(b, "  %s = alloca %s\n", name, in.typ)
	case opLoad:
		fmt.Fprintf(b, "  %s = load %s, %s\n", name, in.typ, dumpArg(in.args[0], nameOf))
	case opStore:
		fmt.Fprintf(b, "  store %s, %s\n", dumpArg(in.args[0], nameOf), dumpArg(in.args[1], nameOf))
	case opZExt:
		fmt.Fprintf(b, "  %s = zext %s to %s\n", name, dumpArg(in.args[0], nameOf), in.typ)
	case opTrunc:
		fmt.Fprintf(b, "  %s = trunc %s to %s\n", name, dumpArg(in.args[0], nameOf), in.typ)
	case opSIToFP, opUIToFP, opFPToSI, opFPToUI:
		fmt.Fprintf(b, "  %s = %s %s to %s\n", name, opName(in.op), dumpArg(in.args[0], nameOf), in.typ)
	case opPhi:
		parts := make([]string, len(in.incoming))
		for i, inc := range in.incoming {
			parts[i] = fmt.Sprintf("[%s, %s]", dumpArg(toVal(inc.Value), nameOf), blockNames[inc.Block.(*block)])
		}
		fmt.Fprintf(b, "  %s = phi %s %s\n", name, in.typ, strings.Join(parts, ", "))
	case opCall:
		args := make([]string, len(in.args))
		for i, a := range in.args {
			args[i] = dumpArg(a, nameOf)
		}
		fmt.Fprintf(b, "  %s = call %s(%s)\n", name, in.callTarget.name, strings.Join(args, ", "))
	default:
		fmt.Fprintf(b, "  %s = <unknown opcode %d>\n", name, in.op)
	}
}

func dumpArg(v *val, nameOf func(*instr) string) string {
	switch v.kind {
	case kConstInt:
		return fmt.Sprintf("%d", v.iv)
	case kConstFloat:
		return fmt.Sprintf("%g", v.fv)
	case kInstr:
		return nameOf(v.instr)
	case kGlobalAddr:
		return "@" + v.glob.name
	case kFuncAddr:
		return "@" + v.fn.name
	default:
		return "<?>"
	}
}

func opName(op opcode) string {
	switch op {
	case opAdd:
		return "add"
	case opSub:
		return "sub"
	case opMul:
		return "mul"
	case opSDiv:
		return "sdiv"
	case opUDiv:
		return "udiv"
	case opFAdd:
		return "fadd"
	case opFSub:
		return "fsub"
	case opFMul:
		return "fmul"
	case opFDiv:
		return "fdiv"
	case opICmp:
		return "icmp"
	case opFCmp:
		return "fcmp"
	case opSIToFP:
		return "sitofp"
	case opUIToFP:
		return "uitofp"
	case opFPToSI:
		return "fptosi"
	case opFPToUI:
		return "fptoui"
	default:
		return fmt.Sprintf("op(%d)", int(op))
	}
}
