package kb

// stopCodon marks translation termination in the codon table.
const stopCodon = '*'

// codonTable is the standard genetic code over RNA codons.
var codonTable = map[string]byte{
	"UUU": 'F', "UUC": 'F', "UUA": 'L', "UUG": 'L',
	"CUU": 'L', "CUC": 'L', "CUA": 'L', "CUG": 'L',
	"AUU": 'I', "AUC": 'I', "AUA": 'I', "AUG": 'M',
	"GUU": 'V', "GUC": 'V', "GUA": 'V', "GUG": 'V',

	"UCU": 'S', "UCC": 'S', "UCA": 'S', "UCG": 'S',
	"CCU": 'P', "CCC": 'P', "CCA": 'P', "CCG": 'P',
	"ACU": 'T', "ACC": 'T', "ACA": 'T', "ACG": 'T',
	"GCU": 'A', "GCC": 'A', "GCA": 'A', "GCG": 'A',

	"UAU": 'Y', "UAC": 'Y', "UAA": stopCodon, "UAG": stopCodon,
	"CAU": 'H', "CAC": 'H', "CAA": 'Q', "CAG": 'Q',
	"AAU": 'N', "AAC": 'N', "AAA": 'K', "AAG": 'K',
	"GAU": 'D', "GAC": 'D', "GAA": 'E', "GAG": 'E',

	"UGU": 'C', "UGC": 'C', "UGA": stopCodon, "UGG": 'W',
	"CGU": 'R', "CGC": 'R', "CGA": 'R', "CGG": 'R',
	"AGU": 'S', "AGC": 'S', "AGA": 'R', "AGG": 'R',
	"GGU": 'G', "GGC": 'G', "GGA": 'G', "GGG": 'G',
}
