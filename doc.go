// Package vest tracks a single tradable position as an append-only ledger of
// orders and tells what to trade next.
//
// The core functionalities include:
//   - Ledger: buys, sells, cash adjustments and splits recorded in
//     chronological order. Each order produces an immutable Snapshot of the
//     position: cost basis, cash, mark, break-even, a synthetic share price
//     and the next buy and sell recommendations.
//   - Order sizing: the next limit order on each side solves a sizing equation
//     with a leverage factor of 3, 2, 4/3 or 1, never moving less than 1% from
//     the last price.
//   - Commission policies: percent, per unit, flat and per unit with a minimum.
//   - FIFO matching: sells are matched against buy serial ranges for realized
//     gain reports with short, long or mixed term classification.
//   - Spot overlay: a live price refines the recommendations into a BUY, SELL
//     or HOLD decision with a trail of explanations.
//   - Ladders: the limit orders to add on each side given the orders already
//     open in the market.
//   - Persistence: the colon separated account file format and a JSONL export
//     of snapshots.
//
// This package serves as the foundational logic for the `vst` command-line
// tool.
package vest
