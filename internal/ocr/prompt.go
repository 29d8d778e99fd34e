package ocr

import "walksocr/internal/domain"

const baseInstructions = `INSTRUÇÕES IMPORTANTES:
1. Extraia APENAS os campos solicitados abaixo
2. Para campos não encontrados, use null
3. Se texto ilegível, use "[ILEGÍVEL]"
4. RETORNE APENAS UM JSON VÁLIDO, sem texto adicional
5. Seja preciso e direto na extração`

const rgPrompt = baseInstructions + `

Extraia APENAS estes 3 campos essenciais do RG/Identidade:

{
    "nome_completo": "nome completo da pessoa ou null",
    "data_nascimento": "data no formato DD/MM/AAAA ou null",
    "cpf": "CPF com ou sem máscara ou null"
}`

const cnpjPrompt = baseInstructions + `

Extraia APENAS estes 3 campos essenciais do Comprovante CNPJ:

{
    "empresa": "razão social ou nome fantasia da empresa ou null",
    "cnpj": "CNPJ com ou sem máscara ou null",
    "nome_comprovante": "nome da empresa conforme aparece no comprovante ou null"
}`

const addressPrompt = baseInstructions + `

Extraia APENAS estes 2 campos essenciais do Comprovante de Endereço:

{
    "cep": "CEP com ou sem máscara ou null",
    "complemento": "informações como Quadra, Lote, Casa, Apartamento, Bloco, etc. ou null"
}`

// BuildPrompt returns the extraction prompt for a document kind, asking for
// exactly the kind's essential fields. Unknown kinds fall back to the CNPJ
// prompt; the facade kind never reaches the model.
func BuildPrompt(kind domain.DocumentKind) string {
	switch kind {
	case domain.KindRG:
		return rgPrompt
	case domain.KindAddress:
		return addressPrompt
	default:
		return cnpjPrompt
	}
}
