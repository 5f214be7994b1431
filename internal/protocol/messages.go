package protocol

// Client -> Engine, one text frame per action on ws://host:port/game/<name>:
//   player: "Player1" | "Player2"
//   user_action: one of
//
// ChooseAction:
//   action: PlayInstantCard { card_index }
//         | HotWireCard { card_index, system, indices_to_discard: number[] }
//         | ActivateSystem { system, energy_to_use: null, energy_distribution: { [system]: number } | null }
//         | DiscardOverload { system }
//         | "ReduceShortCircuits"
//
// Pass:
//   card_indices_to_discard: number[] // sized to bring the hand to 5
//
// ResolveEffect:
//   resolve_effect: "<EffectKind>" for effects without input
//                 | { "<EffectKind>": { system | from_system, to_system | card_index, ... } }
//
// "StopResolvingEffects"

// Engine -> Client
// Ack (reply to the last action, never carries state):
//   { "Ok": ... } | { "Err": string }
//
// Snapshot (pushed after every change, replaces all cached state):
//   player1, player2: {
//     hand: Card[], hull_damage, shields, short_circuits,
//     fusion_reactor, life_support, shield_generator, weapons_system:
//       { system, energy, overloads, hot_wires: Card[] }
//   }
//   players_turn: "Player1" | "Player2"
//   actions_left: number
//   deck, discard_pile: Card[]
//   turn_state: "ChoosingAction" | { ResolvingEffects: { effects: Effect[] } }
