package config

// Default tracked wallets: smart money perpetual traders. Wallets without open
// positions are harmless — their fetches just come back empty.
var defaultWallets = []string{
	"0x0171d947ee6ce0f487490bD4f8D89878FF2d88BA",
	"0x077F7a7b115C989D07f8D8efb16A2C2747B4270d",
	"0xd8b07BC1bC3bAe553BCA5E94E99935dC12Df24Ff",
	"0x08c788aFdACF6cf81180D2bBBE42A7434D0C7A92",
	"0x7Ab8C59Db7b959Bb8C3481d5b9836dfbc939AF21",
	"0x6345f694846335624d182c7a6FfD342B70D462AF",
	"0x2E2e95fF8042A14Fa49DEB03bdb9d9113868494E",
	"0x47A761bb9e970AC93Cb571c4614C4cA643714e4F",
	"0x8e096995C3e4A3F0Bc5B3ea1cBA94dE2Aa4D70C9",
	"0x160dBDdc299Dd258E510f4cB5Aa9B26cd98d6F5a",
	"0x8C50b477e61F4C8f8bF22c9e00627ef24C35e4DB",
	"0xcDEcd8e2d264354Db73eEF8eAf564C531d041B09",
	"0xeAA595A76b7496189e0bCF935609DE9C4be29724",
	"0xAD747d2d91D8fD336Bda8805961089cEc51f3550",
	"0x4Cd80aa0CE4881Eb8679EdA1f6fbe3d89AEc0F7F",
	"0x3A3a7D5aD0EFA928FBee524E6DB4D71c77F60947",
	"0x8aA077F5998D234Ac8641d73D6bc4976e2A210FC",
	"0x25554A80781eE62414C3747e81C3f50157C634B1",
	"0xCfA99B8E07D37F25E5769400c29e22076bC08e81",
	"0x6fbE81055140287005fFB5659A9312EBa019F350",
	"0x24d02e64d4A2580d570666546aC937adaB2b3E08",
	"0x5a54aD9860B08AAee07174887f9ee5107b0A2e72",
	"0x4471104dCD5025A32f9C1903A5Ffb453feeD3A24",
	"dydx1z7lqhru3k0ne6e6gzrc6a2m6cury2gdnms9rdn",
	"dydx1yccxr4zvg4sdl2ftxnkn99mrnn0yyfh8p8370m",
	"0x728744F0C85b1fBD31A71ED9D938d0741A9ef248",
	"0xA8d4D10ccc757F6A1273f89ca5B2B5126b24Ae9A",
	"0x1755AF9d62eF0978AC9dAc48B3EeEBB90e793b82",
	"0xd174911340dD1E86Eb47bB7D5a8B057688aAF33A",
	"0xda72696cEC7398B548F0b62fc094d0ab46C632d3",
	"0x540878197C890811F3625FbFa29C0FC1D39Aed54",
	"0x0cDDEbe6726F9684D982b7A4B325dD784b469D93",
	"0x1F036252e04d9e077E63743e286dE1A98B337765",
	"0xdE0695cdC60aC0dEDB8739951eFf70006CaFAb15",
	"0x9f07Dc88Dc450978e5DDF973f6a0236A7cFBF99a",
	"0xCA2901bDB0a0dB7e6185f0F573E7E09D94a09055",
	"dydx1las9mnvw95xkynaca556tr03rtcqfhw4gk49xe",
	"0xB6860393Ade5CD3766E47e0B031A0F4C33FD48a4",
	"0xDAf845cEbBB9cAd08EB7497BB624329D086cD32A",
	"0x4535B3157eFa05466D5095309C6F12FE3be237dc",
}

// Default protocols polled per wallet. Open string set — anything the source
// API recognizes works, these are just the venues the tracked wallets trade on.
var defaultProtocols = []string{
	"KWENTA",
	"GMX",
	"GMX_V2",
	"GNS",
	"POLYNOMIAL",
	"SYNTHETIX",
	"AEVO",
	"HYPERLIQUID",
	"VERTEX",
	"PERP",
	"GMXV2",
	"LYRA",
	"DYDX",
}
