package cmdscript

import (
	"fmt"

	"sart/netlistsvc"
	"sart/resizer"
)

// Runner dispatches parsed Commands onto a resizer.Resizer's public entry
// points (SPEC_FULL.md §4 A5): the command name selects the entry point,
// positional arguments map onto its parameters in spec.md §4.11's order.
type Runner struct {
	R    *resizer.Resizer
	Libs [][]*netlistsvc.Cell
}

// Run dispatches every command in order, stopping at the first error (a
// CONFIGURATION_ERROR surfaces here exactly as it would from calling the
// entry point directly, spec.md §7).
func (rn *Runner) Run(cmds []Command) error {
	for _, cmd := range cmds {
		if err := rn.dispatch(cmd); err != nil {
			return err
		}
	}
	return nil
}

func (rn *Runner) dispatch(cmd Command) error {
	switch cmd.Name {
	case "resize":
		return rn.R.Resize(rn.Libs)

	case "buffer_inputs":
		cell, err := rn.cellArg(cmd, 0)
		if err != nil {
			return err
		}
		_, err = rn.R.BufferInputs(cell)
		return err

	case "buffer_outputs":
		cell, err := rn.cellArg(cmd, 0)
		if err != nil {
			return err
		}
		_, err = rn.R.BufferOutputs(cell)
		return err

	case "repair_tie_fanout":
		sep, err := rn.numArg(cmd, 0)
		if err != nil {
			return err
		}
		verbose := len(cmd.Args) > 1 && cmd.Args[1].Kind == ArgBool && cmd.Args[1].Bool
		rn.R.RepairTieFanout(sep, verbose)
		return nil

	case "repair_design":
		maxLen, err := rn.numArg(cmd, 0)
		if err != nil {
			return err
		}
		cell, err := rn.cellArg(cmd, 1)
		if err != nil {
			return err
		}
		_, err = rn.R.RepairDesign(maxLen, cell)
		return err

	case "repair_clk_nets":
		maxLen, err := rn.numArg(cmd, 0)
		if err != nil {
			return err
		}
		cell, err := rn.cellArg(cmd, 1)
		if err != nil {
			return err
		}
		_, err = rn.R.RepairClkNets(maxLen, cell)
		return err

	case "repair_hold_violations":
		cell, err := rn.cellArg(cmd, 0)
		if err != nil {
			return err
		}
		allowSetup := len(cmd.Args) > 1 && cmd.Args[1].Kind == ArgBool && cmd.Args[1].Bool
		return rn.R.RepairHoldViolations(cell, allowSetup)

	case "repair_clk_inverters":
		rn.R.RepairClkInverters()
		return nil

	case "estimate_parasitics":
		rn.R.EstimateWireParasitics()
		return nil

	case "report_long_wires":
		n, err := rn.numArg(cmd, 0)
		if err != nil {
			return err
		}
		digits := 3
		if len(cmd.Args) > 1 {
			d, err := rn.numArg(cmd, 1)
			if err != nil {
				return err
			}
			digits = int(d)
		}
		rn.R.ReportLongWires(int(n), digits)
		return nil

	case "remove_buffers":
		var insts []netlistsvc.InstanceID
		for i, a := range cmd.Args {
			if a.Kind != ArgString {
				return fmt.Errorf("cmdscript: remove_buffers argument %d at line %d must be an instance name", i, cmd.Line)
			}
			id, ok := rn.R.NL.FindInstance(a.Str)
			if !ok {
				return fmt.Errorf("cmdscript: remove_buffers: unknown instance %q at line %d", a.Str, cmd.Line)
			}
			insts = append(insts, id)
		}
		rn.R.RemoveBuffers(insts)
		return nil

	default:
		return fmt.Errorf("cmdscript: unknown command %q at line %d", cmd.Name, cmd.Line)
	}
}

func (rn *Runner) cellArg(cmd Command, i int) (*netlistsvc.Cell, error) {
	if i >= len(cmd.Args) || cmd.Args[i].Kind != ArgString {
		return nil, fmt.Errorf("cmdscript: %s expects a cell name at argument %d, line %d", cmd.Name, i, cmd.Line)
	}
	name := cmd.Args[i].Str
	for _, lib := range rn.Libs {
		for _, cell := range lib {
			if cell.Name == name {
				return cell, nil
			}
		}
	}
	return nil, fmt.Errorf("cmdscript: %s: unknown cell %q at line %d", cmd.Name, name, cmd.Line)
}

func (rn *Runner) numArg(cmd Command, i int) (float64, error) {
	if i >= len(cmd.Args) || cmd.Args[i].Kind != ArgNumber {
		return 0, fmt.Errorf("cmdscript: %s expects a number at argument %d, line %d", cmd.Name, i, cmd.Line)
	}
	return cmd.Args[i].Num, nil
}
