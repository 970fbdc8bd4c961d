/*
Package mcerrs decodes and reports memory controller (MC) fault interrupts
for a family of chip generations that share one interrupt-driven fault
reporting scheme, but differ in register layout, client tables, and the
meaning of individual interrupt status bits.

When the memory controller raises a fault interrupt, mcerrs identifies the
cause (EMEM decode error, security violation, SMMU page fault, arbitration
error, and so on), extracts the faulting client, address, and access type
from the chip's fault status registers, renders a rate-limited diagnostic
report, and maintains cumulative per-client statistics that can be read
back later, outside the interrupt path.

# Chips, Capabilities, and Tables

Everything generation-specific enters through exactly one [ChipOps]
capability set plus a few data tables, installed once when creating a
[Controller] and never swapped afterwards. A chip generation supplies:

  - a [Fault] descriptor table mapping interrupt signature bits to fault
    metadata, including which further register reads are valid for that
    fault category;
  - a [ClientTable] mapping hardware transaction source ids to
    human-readable client identities;
  - an interrupt description table of exactly 32 short strings, one per
    status bit, used to annotate status bits that have no structured
    descriptor.

The tegra12x subpackage is such a chip generation backend; the profile
subpackage loads equivalent tables from YAML for offline decoding, and the
mmio subpackage provides register access to real hardware through a UIO
memory window.

# Execution Contexts

Interrupt-driven fault handling knows three execution contexts with very
different obligations, and mcerrs preserves that split even though it runs
in ordinary goroutines:

  - the hard fault context must be as short as possible: its only legal
    actions are masking the interrupt line and a non-blocking handoff, see
    [Controller.FaultRaised];
  - the deferred logging context does the bounded decode, throttle, and
    report work, see [Controller.ServiceFault]; it never sleeps
    indefinitely;
  - the diagnostics read context may block and only ever reads aggregated
    state, see [Controller.AllClientFaults], [Controller.AllFaultCounts],
    and [Controller.WriteDiagnostics].

The deferred context always runs the same control sequence per fault:
disable the interrupt line, log the fault, decode and report it, clear the
interrupt status, and only then re-enable the line. Masking before logging
guarantees that the fault source cannot re-fire and corrupt the status
register contents mid-decode; clearing before unmasking makes the hardware
ready to latch the next fault. This sequence completes even when decoding
fails, as losing fault visibility is strictly worse than an imprecise
report.

# Report Throttling

A faulting client tends to keep faulting. To avoid flooding the report
sink, each fault signature is reported at most [MaxPrints] times; further
occurrences are still counted in all statistics, they just no longer
produce text. The counters persist until explicitly reset through
[Controller.ResetThrottle]. Additionally, [Controller.Silence] suppresses
all textual output without affecting any bookkeeping.
*/
package mcerrs
