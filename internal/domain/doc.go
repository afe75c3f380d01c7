// Package domain models the EMPARN daily rainfall bulletin.
//
// # Data Source
//
// EMPARN (Empresa de Pesquisa Agropecuária do Rio Grande do Norte) publishes
// a daily rainfall bulletin at https://meteorologia.emparn.rn.gov.br/boletim/diario.
// Some days the page links an official CSV or TXT export; otherwise the data
// only exists as HTML tables rendered client-side, one per mesoregion tab.
//
// # Bulletin Conventions
//
// Regions:
//
//	Four tabs, one per mesoregion of Rio Grande do Norte. Each tab is an
//	anchor "a#<id>" whose table lives under "#<id>-content":
//	  agreste_potiguar  Agreste Potiguar
//	  central_potiguar  Central Potiguar
//	  leste_potiguar    Leste Potiguar
//	  oeste_potiguar    Oeste Potiguar
//
// Column headers (Portuguese, spelled inconsistently across days):
//
//	Município, Posto, Tipo de Posto, Horas Contabilizadas, Precipitação (mm).
//	Headers are matched after [NormalizeHeader]: whitespace collapsed,
//	lowercased, diacritics removed ("Precipitação (mm)" → "precipitacao (mm)").
//	Each logical [Field] accepts several spellings; see [Field.Aliases].
//
// Number format:
//
//	Brazilian locale: "." groups thousands and "," marks decimals,
//	so "1.234,56" is 1234.56. Blank or non-numeric cells are null.
//	See [ParseNumber].
//
// # Observation
//
// One [Observation] per table row. The region is taken from the tab that
// produced the table, never from the row. Rows without municipality, station
// and precipitation are dropped.
package domain
